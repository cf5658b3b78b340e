package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/foomo/portfolio-mcp/dom"
	"github.com/foomo/portfolio-mcp/service"
	"github.com/foomo/portfolio-mcp/service/vo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const Version = "0.1.0"

type NavigateRequest struct {
	Section string `json:"section"` // The section to navigate to, e.g. "photography"
}

type SnapshotRequest struct{}

type ClickRequest struct {
	Selector string `json:"selector"` // CSS selector of the element to click
	Index    int    `json:"index"`    // Which of the matched elements to click
}

type SelectBlogDateRequest struct {
	Date string `json:"date"` // The displayed date of the blog entry
}

type ScrollRequest struct {
	Top          int `json:"top"`
	ClientHeight int `json:"clientHeight"`
	ScrollHeight int `json:"scrollHeight"`
}

type SubmitContactRequest struct {
	Fields map[string]string `json:"fields"` // Form field values by control name
}

type SectionsRequest struct{}

type PreviewRequest struct {
	Section string `json:"section"`
}

type SnapshotResponse struct {
	Snapshot *vo.Snapshot `json:"snapshot"`
	Error    string       `json:"error,omitempty"` // Set when the interaction failed but the page is still readable
}

type SectionsResponse struct {
	Sections []vo.Section `json:"sections"`
}

type PreviewResponse struct {
	Summary  vo.ContentSummary `json:"summary"`
	Markdown string            `json:"markdown"`
}

// NewServer creates a new MCP server exposing the page session as tools
func NewServer(serviceInstance service.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"Portfolio MCP",
		Version,
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("navigate",
		mcp.WithDescription("Navigate to a section of the portfolio and return the resulting page snapshot"),
		mcp.WithString("section",
			mcp.Required(),
			mcp.Description("The section name, e.g. 'home', 'blog', 'photography', 'contact'"),
		),
	), mcp.NewTypedToolHandler(getNavigateHandler(serviceInstance)))

	s.AddTool(mcp.NewTool("snapshot",
		mcp.WithDescription("Return the current page snapshot including markdown of the content region"),
	), mcp.NewTypedToolHandler(getSnapshotHandler(serviceInstance)))

	s.AddTool(mcp.NewTool("click",
		mcp.WithDescription("Click an element of the page, e.g. an experience block, a gallery thumbnail or the lightbox backdrop"),
		mcp.WithString("selector",
			mcp.Required(),
			mcp.Description("CSS selector (e.g., '.experience-block', '#athletics-grid img', '#photography-lightbox')"),
		),
		mcp.WithNumber("index",
			mcp.Description("Index into the matched elements, defaults to 0"),
		),
	), mcp.NewTypedToolHandler(getClickHandler(serviceInstance)))

	s.AddTool(mcp.NewTool("selectBlogDate",
		mcp.WithDescription("Show the blog entry with the given date"),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("The date as displayed in the blog date list"),
		),
	), mcp.NewTypedToolHandler(getSelectBlogDateHandler(serviceInstance)))

	s.AddTool(mcp.NewTool("scroll",
		mcp.WithDescription("Scroll the main container; the photo gallery loads more images near the bottom"),
		mcp.WithNumber("top", mcp.Required(), mcp.Description("scrollTop in pixels")),
		mcp.WithNumber("clientHeight", mcp.Required(), mcp.Description("Visible height in pixels")),
		mcp.WithNumber("scrollHeight", mcp.Required(), mcp.Description("Total scrollable height in pixels")),
	), mcp.NewTypedToolHandler(getScrollHandler(serviceInstance)))

	s.AddTool(mcp.NewTool("submitContact",
		mcp.WithDescription("Fill in and submit the contact form"),
		mcp.WithObject("fields",
			mcp.Required(),
			mcp.Description("Form values keyed by control name, e.g. {\"email\": \"...\", \"message\": \"...\"}"),
		),
	), mcp.NewTypedToolHandler(getSubmitContactHandler(serviceInstance)))

	s.AddTool(mcp.NewTool("sections",
		mcp.WithDescription("List the sections reachable from the navigation"),
	), mcp.NewTypedToolHandler(getSectionsHandler(serviceInstance)))

	s.AddTool(mcp.NewTool("preview",
		mcp.WithDescription("Render a section fragment to markdown without navigating to it"),
		mcp.WithString("section",
			mcp.Required(),
			mcp.Description("The section name"),
		),
	), mcp.NewTypedToolHandler(getPreviewHandler(serviceInstance)))

	return s
}

func jsonResult(response any) (*mcp.CallToolResult, error) {
	responseBytes, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseBytes)), nil
}

// snapshotResult reports failures that still left a readable page inline
func snapshotResult(action string, snapshot *vo.Snapshot, err error) (*mcp.CallToolResult, error) {
	if snapshot == nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to %s: %v", action, err)), nil
	}
	response := SnapshotResponse{Snapshot: snapshot}
	if err != nil {
		response.Error = fmt.Sprintf("failed to %s: %v", action, err)
	}
	return jsonResult(response)
}

func getNavigateHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args NavigateRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args NavigateRequest) (*mcp.CallToolResult, error) {
		if args.Section == "" {
			return mcp.NewToolResultError("section is required"), nil
		}
		snapshot, err := serviceInstance.Navigate(ctx, vo.Section(args.Section))
		return snapshotResult("navigate", snapshot, err)
	}
}

func getSnapshotHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args SnapshotRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args SnapshotRequest) (*mcp.CallToolResult, error) {
		snapshot, err := serviceInstance.Snapshot(ctx)
		return snapshotResult("take snapshot", snapshot, err)
	}
}

func getClickHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args ClickRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ClickRequest) (*mcp.CallToolResult, error) {
		if args.Selector == "" {
			return mcp.NewToolResultError("selector is required"), nil
		}
		if args.Index < 0 {
			return mcp.NewToolResultError("index must not be negative"), nil
		}
		snapshot, err := serviceInstance.Click(ctx, args.Selector, args.Index)
		return snapshotResult("click", snapshot, err)
	}
}

func getSelectBlogDateHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args SelectBlogDateRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args SelectBlogDateRequest) (*mcp.CallToolResult, error) {
		if args.Date == "" {
			return mcp.NewToolResultError("date is required"), nil
		}
		snapshot, err := serviceInstance.SelectBlogDate(ctx, args.Date)
		return snapshotResult("select blog date", snapshot, err)
	}
}

func getScrollHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args ScrollRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ScrollRequest) (*mcp.CallToolResult, error) {
		if args.ClientHeight < 0 || args.ScrollHeight < 0 {
			return mcp.NewToolResultError("heights must not be negative"), nil
		}
		snapshot, err := serviceInstance.Scroll(ctx, dom.Scroll{
			Top:          args.Top,
			ClientHeight: args.ClientHeight,
			ScrollHeight: args.ScrollHeight,
		})
		return snapshotResult("scroll", snapshot, err)
	}
}

func getSubmitContactHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args SubmitContactRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args SubmitContactRequest) (*mcp.CallToolResult, error) {
		if len(args.Fields) == 0 {
			return mcp.NewToolResultError("fields are required"), nil
		}
		snapshot, err := serviceInstance.SubmitContact(ctx, args.Fields)
		return snapshotResult("submit contact form", snapshot, err)
	}
}

func getSectionsHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args SectionsRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args SectionsRequest) (*mcp.CallToolResult, error) {
		sections, err := serviceInstance.Sections(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list sections: %v", err)), nil
		}
		return jsonResult(SectionsResponse{Sections: sections})
	}
}

func getPreviewHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args PreviewRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args PreviewRequest) (*mcp.CallToolResult, error) {
		if args.Section == "" {
			return mcp.NewToolResultError("section is required"), nil
		}
		summary, markdown, err := serviceInstance.Preview(ctx, vo.Section(args.Section))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to preview section: %v", err)), nil
		}
		return jsonResult(PreviewResponse{Summary: summary, Markdown: string(markdown)})
	}
}
