package mcp

import "github.com/mark3labs/mcp-go/mcp"

func parseTemplateTool() mcp.Tool {
	return mcp.NewTool("parse_template",
		mcp.WithDescription("Parse the documentation blocks of one Liquid template. Accepts a file path or inline content and returns blocks plus diagnostics."),
		mcp.WithString("path", mcp.Description("Template path, absolute or relative to the server root")),
		mcp.WithString("content", mcp.Description("Inline Liquid source to parse instead of reading path")),
	)
}

func getTemplateDocTool() mcp.Tool {
	return mcp.NewTool("get_template_doc",
		mcp.WithDescription("Return the documentation header of one template: description, parameters and examples."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Template path, absolute or relative to the server root")),
	)
}

func checkTemplatesTool() mcp.Tool {
	return mcp.NewTool("check_templates",
		mcp.WithDescription("Check every Liquid template under a directory for missing or malformed documentation. Returns a summary with findings."),
		mcp.WithString("root", mcp.Description("Directory to check. Defaults to the server root")),
		mcp.WithBoolean("warn", mcp.Description("Downgrade missing documentation to warnings")),
		mcp.WithBoolean("eparse", mcp.Description("Treat parse diagnostics as failures")),
	)
}

func listVendorTypesTool() mcp.Tool {
	return mcp.NewTool("list_vendor_types",
		mcp.WithDescription("List the vendor type identifiers accepted in @param type expressions."),
		mcp.WithString("prefix", mcp.Description("Case-insensitive prefix filter")),
	)
}

func registryInfoTool() mcp.Tool {
	return mcp.NewTool("registry_info",
		mcp.WithDescription("Describe the active vendor type dataset: name, schema version, origin and freshness."),
	)
}
