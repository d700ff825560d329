package resources

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/ewsfreebusy/internal/config"
	"github.com/teemow/ewsfreebusy/internal/ews"
	"github.com/teemow/ewsfreebusy/internal/server"
)

func readJSON(t *testing.T, contents []mcp.ResourceContents) map[string]interface{} {
	t.Helper()
	require.Len(t, contents, 1)
	text, ok := contents[0].(*mcp.TextResourceContents)
	require.True(t, ok, "expected text contents")
	assert.Equal(t, "application/json", text.MIMEType)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &data))
	return data
}

func readRequest(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func TestRegisterResources(t *testing.T) {
	sc := server.NewServerContext(context.Background(), config.Runtime{}, nil, nil)
	s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithResourceCapabilities(false, false))

	assert.NoError(t, RegisterResources(s, sc))
	assert.Error(t, RegisterResources(nil, sc))
	assert.Error(t, RegisterResources(s, nil))
}

func TestHandleConfig(t *testing.T) {
	cfg := config.Runtime{
		Endpoint:             "https://mail.example.com/EWS/Exchange.asmx",
		Token:                "secret-token",
		TimeZone:             "Europe/Berlin",
		Mailbox:              "jane@example.com",
		MergeIntervalMinutes: 30,
		IncludeTentative:     true,
	}
	svc := ews.NewService(ews.TransportFunc(func(context.Context, []byte) ([]byte, error) { return nil, nil }))
	sc := server.NewServerContext(context.Background(), cfg, svc, nil)

	contents, err := handleConfig(context.Background(), readRequest(ConfigURI), sc)
	require.NoError(t, err)

	data := readJSON(t, contents)
	assert.Equal(t, true, data["endpointConfigured"])
	assert.Equal(t, "mail.example.com", data["endpointHost"])
	assert.Equal(t, true, data["tokenConfigured"])
	assert.Equal(t, "Europe/Berlin", data["timezone"])
	assert.Equal(t, float64(30), data["mergeIntervalMinutes"])
	assert.NotContains(t, contents[0].(*mcp.TextResourceContents).Text, "secret-token")
}

func TestHandleConfig_NoEndpoint(t *testing.T) {
	sc := server.NewServerContext(context.Background(), config.Runtime{TimeZone: "Europe/London"}, nil, nil)

	contents, err := handleConfig(context.Background(), readRequest(ConfigURI), sc)
	require.NoError(t, err)

	data := readJSON(t, contents)
	assert.Equal(t, false, data["endpointConfigured"])
	assert.Equal(t, "", data["endpointHost"])
	assert.Equal(t, false, data["tokenConfigured"])
}

func TestHandleItemTypes(t *testing.T) {
	sc := server.NewServerContext(context.Background(), config.Runtime{}, nil, nil)

	contents, err := handleItemTypes(context.Background(), readRequest(ItemTypesURI), sc)
	require.NoError(t, err)

	data := readJSON(t, contents)
	assert.Equal(t, []interface{}{"CalendarEvent", "CalendarItem"}, data["itemTypes"])
	assert.Equal(t, true, data["sealed"])
}
