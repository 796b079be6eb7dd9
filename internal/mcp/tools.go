package mcp

import "github.com/mark3labs/mcp-go/mcp"

var importToolDef = mcp.NewTool("contact_import",
	mcp.WithDescription("Import every vCard (2.1 or 3.0) in a .vcf file as stored contacts. All or nothing: a bad object aborts the whole import."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to a .vcf or .vcard file directly inside ~/.contacts/exports or an allowed_paths directory"),
	),
)

var exportToolDef = mcp.NewTool("contact_export",
	mcp.WithDescription("Write stored contacts to a vCard 3.0 file"),
	mcp.WithString("path",
		mcp.Description("Destination .vcf file (default ~/.contacts/exports/<name>-<timestamp>.vcf)"),
	),
	mcp.WithArray("ids",
		mcp.Description("Contact IDs to export (default: all contacts)"),
		mcp.WithStringItems(),
	),
	mcp.WithBoolean("aggregate",
		mcp.Description("Merge contacts linked to the same person into one vCard"),
	),
)

var fetchToolDef = mcp.NewTool("contact_fetch",
	mcp.WithDescription("Get one contact with its full record and linked contact IDs"),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Contact ID"),
	),
	mcp.WithBoolean("include_vcard",
		mcp.Description("Also return the contact rendered as vCard 3.0"),
	),
)

var listToolDef = mcp.NewTool("contact_list",
	mcp.WithDescription("List contact summaries ordered by display name"),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of contacts to return (default 20, max 100)"),
	),
	mcp.WithNumber("offset",
		mcp.Description("Number of contacts to skip"),
	),
)

var searchToolDef = mcp.NewTool("contact_search",
	mcp.WithDescription("Find contacts whose display name or UID contains the query (case-insensitive)"),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Text to look for"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of contacts to return (default 20, max 100)"),
	),
	mcp.WithNumber("offset",
		mcp.Description("Number of contacts to skip"),
	),
)

var updateToolDef = mcp.NewTool("contact_update",
	mcp.WithDescription("Replace a contact's record with one decoded from vCard text. ID, person link and creation time are kept."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Contact ID"),
	),
	mcp.WithString("vcard",
		mcp.Required(),
		mcp.Description("Exactly one vCard object"),
	),
)

var deleteToolDef = mcp.NewTool("contact_delete",
	mcp.WithDescription("Permanently delete a contact"),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Contact ID"),
	),
)

var linkToolDef = mcp.NewTool("contact_link",
	mcp.WithDescription("Mark contacts as the same person. All of them join the person of the first ID."),
	mcp.WithArray("ids",
		mcp.Required(),
		mcp.Description("Two to fifty contact IDs"),
		mcp.WithStringItems(),
	),
)

var countToolDef = mcp.NewTool("vcard_count",
	mcp.WithDescription("Count the vCard objects in a file without importing it"),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to a .vcf or .vcard file"),
	),
)

var decodeToolDef = mcp.NewTool("vcard_decode",
	mcp.WithDescription("Parse vCard text into contact records without storing them"),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("One or more vCard objects"),
	),
)

var encodeToolDef = mcp.NewTool("vcard_encode",
	mcp.WithDescription("Render contact records (as returned by vcard_decode or contact_fetch) as vCard 3.0 text"),
	mcp.WithArray("records",
		mcp.Required(),
		mcp.Description("Contact records"),
		mcp.Items(map[string]any{"type": "object"}),
	),
	mcp.WithBoolean("aggregate",
		mcp.Description("Merge all records into a single vCard"),
	),
)
