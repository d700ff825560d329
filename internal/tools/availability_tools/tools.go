package availability_tools

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ewsfreebusy/internal/availability"
	"github.com/teemow/ewsfreebusy/internal/calendar"
	"github.com/teemow/ewsfreebusy/internal/ews"
	"github.com/teemow/ewsfreebusy/internal/server"
	"github.com/teemow/ewsfreebusy/internal/tools/batch"
	"github.com/teemow/ewsfreebusy/internal/tools/common"
)

// Tool names.
const (
	ToolGetUserAvailability = "ews_get_user_availability"
	ToolFindAvailableTime   = "ews_find_available_time"
	ToolExportICS           = "ews_export_ics"
	ToolBuildRequest        = "ews_build_request"
	ToolResolveTimezone     = "ews_resolve_timezone"
	ToolBatchAvailability   = "ews_batch_get_availability"
)

const defaultMaxResults = 10

var errNoEndpoint = errors.New("no EWS endpoint configured. Set EWSFREEBUSY_ENDPOINT and EWSFREEBUSY_TOKEN and restart the server")

// windowOptions are the arguments shared by every tool that describes a lookup.
func windowOptions(withMailbox bool) []mcp.ToolOption {
	var opts []mcp.ToolOption
	if withMailbox {
		opts = append(opts, mcp.WithString(common.ArgMailbox,
			mcp.Description("Mailbox address to query (default: the configured mailbox)"),
		))
	}
	return append(opts,
		mcp.WithString(common.ArgTimeZone,
			mcp.Description("IANA timezone name used for the window, e.g. 'Europe/London' (default: the configured timezone)"),
		),
		mcp.WithString(common.ArgStart,
			mcp.Description("Window start as local wall-clock time, e.g. '2025-01-06T09:00:00' (default: start of today)"),
		),
		mcp.WithString(common.ArgEnd,
			mcp.Description("Window end as local wall-clock time; a date covers the whole day (default: end of the start day)"),
		),
		mcp.WithNumber(common.ArgMergeInterval,
			mcp.Description("Length of each merged free/busy slot in minutes (default: 60)"),
		),
	)
}

func newTool(name, description string, extra ...mcp.ToolOption) mcp.Tool {
	opts := append([]mcp.ToolOption{mcp.WithDescription(description)}, windowOptions(true)...)
	return mcp.NewTool(name, append(opts, extra...)...)
}

// RegisterAvailabilityTools registers all availability tools with the MCP server
func RegisterAvailabilityTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if s == nil || sc == nil {
		return fmt.Errorf("MCP server and server context are required")
	}

	getAvailabilityTool := newTool(ToolGetUserAvailability,
		"Get the merged free/busy status and calendar events of a mailbox for a time window")
	s.AddTool(getAvailabilityTool, common.InstrumentedToolHandler(ToolGetUserAvailability, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetUserAvailability(ctx, request, sc)
		}))

	findAvailableTimeTool := newTool(ToolFindAvailableTime,
		"Find free time slots of a given length in a mailbox's calendar",
		mcp.WithNumber("durationMinutes",
			mcp.Required(),
			mcp.Description("Meeting duration in minutes"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of available slots to return (default: 10)"),
		),
		mcp.WithBoolean("includeTentative",
			mcp.Description("Treat tentative time as busy (default: the configured setting)"),
		),
	)
	s.AddTool(findAvailableTimeTool, common.InstrumentedToolHandler(ToolFindAvailableTime, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindAvailableTime(ctx, request, sc)
		}))

	exportTool := newTool(ToolExportICS,
		"Export the calendar events of a mailbox for a time window as an iCalendar document")
	s.AddTool(exportTool, common.InstrumentedToolHandler(ToolExportICS, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleExportICS(ctx, request, sc)
		}))

	buildRequestTool := newTool(ToolBuildRequest,
		"Build the GetUserAvailability SOAP request document without sending it")
	s.AddTool(buildRequestTool, common.InstrumentedToolHandler(ToolBuildRequest, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleBuildRequest(ctx, request, sc)
		}))

	resolveTimezoneTool := mcp.NewTool(ToolResolveTimezone,
		mcp.WithDescription("Resolve the UTC offset and daylight saving rule of a timezone"),
		mcp.WithString(common.ArgTimeZone,
			mcp.Description("IANA timezone name (default: the configured timezone)"),
		),
		mcp.WithString("at",
			mcp.Description("Reference time in RFC3339 format (default: now)"),
		),
	)
	s.AddTool(resolveTimezoneTool, common.InstrumentedToolHandler(ToolResolveTimezone, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleResolveTimezone(ctx, request, sc)
		}))

	batchOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Get the merged free/busy status of several mailboxes for the same time window"),
		mcp.WithString("mailboxes",
			mcp.Required(),
			mcp.Description("Mailbox address (string) or array of mailbox addresses to query"),
		),
	}, windowOptions(false)...)
	batchTool := mcp.NewTool(ToolBatchAvailability, batchOpts...)
	s.AddTool(batchTool, common.InstrumentedToolHandler(ToolBatchAvailability, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleBatchAvailability(ctx, request, sc)
		}))

	return nil
}

// lookup runs one availability request built from the tool arguments.
func lookup(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*ews.Availability, error) {
	svc := sc.Service()
	if svc == nil {
		return nil, errNoEndpoint
	}

	params, err := common.ParamsFromArgs(request.GetArguments(), sc.Config(), sc.Now())
	if err != nil {
		return nil, err
	}
	return svc.GetUserAvailability(ctx, params)
}

func freeBusyInfo(result *ews.Availability) calendar.FreeBusyInfo {
	interval := time.Duration(result.Params.MergeIntervalMinutes) * time.Minute
	return calendar.FromResult(result.Params.Mailbox, result.Params.Start, interval, result.Statuses, result.Items)
}

func handleGetUserAvailability(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	result, err := lookup(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get availability: %v", err)), nil
	}

	text := fmt.Sprintf("Window: %s to %s (%s)\nMerged free/busy: %s\n\n%s",
		result.Params.Start.Format("2006-01-02 15:04"),
		result.Params.End.Format("2006-01-02 15:04"),
		result.Params.TimeZone,
		availability.EncodeMergedFreeBusy(result.Statuses),
		calendar.FormatFreeBusy(freeBusyInfo(result)))
	return mcp.NewToolResultText(text), nil
}

func handleFindAvailableTime(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	durationMinutes := common.GetIntArg(args, "durationMinutes", 0)
	if durationMinutes <= 0 {
		return mcp.NewToolResultError("durationMinutes is required and must be positive"), nil
	}
	maxResults := common.GetIntArg(args, "maxResults", defaultMaxResults)
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	includeTentative := common.GetBoolArg(args, "includeTentative", sc.Config().IncludeTentative)

	result, err := lookup(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get availability: %v", err)), nil
	}

	loc, err := time.LoadLocation(result.Params.TimeZone)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load timezone: %v", err)), nil
	}

	interval := time.Duration(result.Params.MergeIntervalMinutes) * time.Minute
	ranges := calendar.StatusRanges(result.Params.Start, interval, result.Statuses)
	busy := calendar.BusyRanges(ranges, includeTentative)
	busy = append(busy, calendar.EventRanges(result.Items, loc, includeTentative)...)

	slots, err := calendar.FindAvailableSlots(busy, time.Duration(durationMinutes)*time.Minute, 0, result.Params.Start, result.Params.End)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to find available time: %v", err)), nil
	}
	if len(slots) > maxResults {
		slots = slots[:maxResults]
	}

	return mcp.NewToolResultText(calendar.FormatSlots(slots)), nil
}

func handleExportICS(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	result, err := lookup(ctx, request, sc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get availability: %v", err)), nil
	}

	loc, err := time.LoadLocation(result.Params.TimeZone)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load timezone: %v", err)), nil
	}

	doc, err := calendar.ExportICS(result.Params.Mailbox, result.Items, loc, sc.Now())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to export calendar: %v", err)), nil
	}
	return mcp.NewToolResultText(doc), nil
}

func handleBuildRequest(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	params, err := common.ParamsFromArgs(request.GetArguments(), sc.Config(), sc.Now())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid parameters: %v", err)), nil
	}

	doc, _, err := availability.NewRequest(params, sc.Now())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build request: %v", err)), nil
	}

	body, err := doc.MarshalIndent()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode request: %v", err)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

func handleResolveTimezone(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	zone := common.GetStringArg(args, common.ArgTimeZone)
	if zone == "" {
		zone = sc.Config().TimeZone
	}

	ref := sc.Now()
	if at := common.GetStringArg(args, "at"); at != "" {
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid at format: %v", err)), nil
		}
		ref = parsed
	}

	rule, err := availability.ResolveTimezone(zone, ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, err := calendar.FormatTimezone(zone, rule, ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func handleBatchAvailability(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	mailboxes, err := batch.ParseStringOrArray(args["mailboxes"], "mailboxes")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svc := sc.Service()
	if svc == nil {
		return mcp.NewToolResultError(errNoEndpoint.Error()), nil
	}

	results := batch.ProcessBatch(ctx, mailboxes, batch.DefaultConcurrency, func(ctx context.Context, mailbox string) (string, error) {
		mailboxArgs := maps.Clone(args)
		mailboxArgs[common.ArgMailbox] = mailbox

		params, err := common.ParamsFromArgs(mailboxArgs, sc.Config(), sc.Now())
		if err != nil {
			return "", err
		}
		result, err := svc.GetUserAvailability(ctx, params)
		if err != nil {
			return "", err
		}

		busy := freeBusyInfo(result).Busy
		return fmt.Sprintf("%s (%d busy period(s), %d event(s))",
			availability.EncodeMergedFreeBusy(result.Statuses), len(busy), len(result.Items)), nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}
