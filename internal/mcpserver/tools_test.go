package mcpserver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/mark3labs/estimatr/internal/estimate"
	"github.com/mark3labs/estimatr/internal/history"
	"github.com/mark3labs/estimatr/internal/predict"
	"github.com/mark3labs/estimatr/internal/refdata"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePredictor struct {
	got   *estimate.Request
	err   error
	price string
}

func (f *fakePredictor) Predict(_ context.Context, req estimate.Request) (*predict.Result, error) {
	f.got = &req
	if f.err != nil {
		return nil, f.err
	}
	return &predict.Result{FormattedPrice: f.price, PredictedPrice: 1}, nil
}

type fakeRecorder struct {
	entries []history.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e history.Entry) (history.Entry, error) {
	f.entries = append(f.entries, e)
	return e, nil
}

func testCatalog(t *testing.T) *refdata.Catalog {
	t.Helper()
	cat, err := refdata.New(refdata.Data{
		Types:  []refdata.PropertyType{{ID: "Appartement"}, {ID: "Terrain"}},
		Cities: []string{"Rabat", "Fes"},
		NeighborhoodsByCity: map[string][]string{
			"Rabat": {"Agdal", "Hassan"},
			"Fes":   {"Medina"},
		},
		TypeFeatures:         map[string][]string{"Appartement": {"ascenseur", "terrasse"}},
		TypesWithFloor:       []string{"Appartement"},
		TypesWithoutBedrooms: []string{"Terrain"},
	})
	require.NoError(t, err)
	return cat
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
}

// extractText extracts text from CallToolResult.Content[0]
func extractText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if textContent, ok := result.Content[0].(mcp.TextContent); ok {
		return textContent.Text
	}
	return ""
}

func TestEstimatePrice_Success(t *testing.T) {
	pred := &fakePredictor{price: "1,100,000.00 MAD"}
	rec := &fakeRecorder{}
	srv := New(testCatalog(t), pred, rec, "test")

	result, err := srv.handleEstimatePrice(context.Background(), call("estimate-price", map[string]any{
		"property_type": "Appartement",
		"city":          "Rabat",
		"neighborhood":  "Agdal",
		"surface":       95.0,
		"bedrooms":      2.0,
		"bathrooms":     1.0,
		"floor":         4.0,
		"amenities":     []any{"ascenseur"},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractText(result))
	assert.Equal(t, "Estimated price: 1,100,000.00 MAD", extractText(result))

	require.NotNil(t, pred.got)
	assert.Equal(t, 95.0, pred.got.Surface)
	assert.Equal(t, 4, pred.got.Floor)
	assert.Equal(t, 1, pred.got.Amenities["ascenseur"])
	assert.Equal(t, 0, pred.got.Amenities["terrasse"])
	assert.Equal(t, 0, pred.got.Amenities["piscine"])

	require.Len(t, rec.entries, 1)
	assert.Equal(t, "1,100,000.00 MAD", rec.entries[0].FormattedPrice)
}

func TestEstimatePrice_NoBedroomType(t *testing.T) {
	pred := &fakePredictor{price: "500,000.00 MAD"}
	srv := New(testCatalog(t), pred, nil, "test")

	result, err := srv.handleEstimatePrice(context.Background(), call("estimate-price", map[string]any{
		"property_type": "Terrain",
		"city":          "Fes",
		"neighborhood":  "Medina",
		"surface":       1000.0,
		"floor":         7.0,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractText(result))
	assert.Equal(t, 0, pred.got.Bedrooms)
	assert.Equal(t, 0, pred.got.Floor, "floor is ignored for types without one")
}

func TestEstimatePrice_ValidationErrors(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"property_type": "Appartement",
			"city":          "Rabat",
			"neighborhood":  "Agdal",
			"surface":       80.0,
			"bedrooms":      2.0,
			"bathrooms":     1.0,
		}
	}

	tests := []struct {
		name   string
		mutate func(map[string]any)
		want   string
	}{
		{"unknown type", func(a map[string]any) { a["property_type"] = "Castle" }, "unknown property type"},
		{"foreign neighborhood", func(a map[string]any) { a["neighborhood"] = "Medina" }, "does not belong"},
		{"missing city", func(a map[string]any) { delete(a, "city") }, "does not belong"},
		{"zero surface", func(a map[string]any) { a["surface"] = 0.0 }, "surface"},
		{"missing bedrooms", func(a map[string]any) { delete(a, "bedrooms") }, "bedrooms"},
		{"fractional bathrooms", func(a map[string]any) { a["bathrooms"] = 1.5 }, "bathrooms"},
		{"inapplicable amenity", func(a map[string]any) { a["amenities"] = []any{"piscine"} }, "not applicable"},
		{"amenities not array", func(a map[string]any) { a["amenities"] = "ascenseur" }, "array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred := &fakePredictor{price: "x"}
			srv := New(testCatalog(t), pred, nil, "test")

			args := base()
			tt.mutate(args)
			result, err := srv.handleEstimatePrice(context.Background(), call("estimate-price", args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, extractText(result), tt.want)
			assert.Nil(t, pred.got, "nothing is submitted for invalid input")
		})
	}
}

func TestEstimatePrice_PredictionFailure(t *testing.T) {
	pred := &fakePredictor{err: errors.New("connection refused")}
	rec := &fakeRecorder{}
	srv := New(testCatalog(t), pred, rec, "test")

	result, err := srv.handleEstimatePrice(context.Background(), call("estimate-price", map[string]any{
		"property_type": "Terrain",
		"city":          "Rabat",
		"neighborhood":  "Hassan",
		"surface":       300.0,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "connection refused")
	assert.Empty(t, rec.entries)
}

func TestReferenceData_Catalog(t *testing.T) {
	srv := New(testCatalog(t), &fakePredictor{}, nil, "test")

	result, err := srv.handleReferenceData(context.Background(), call("reference-data", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var info catalogInfo
	require.NoError(t, sonic.Unmarshal([]byte(extractText(result)), &info))
	require.Len(t, info.Types, 2)
	assert.Equal(t, "Appartement", info.Types[0].ID)
	assert.Equal(t, []string{"Agdal", "Hassan"}, info.Neighborhoods["Rabat"])
}

func TestReferenceData_Layout(t *testing.T) {
	srv := New(testCatalog(t), &fakePredictor{}, nil, "test")

	result, err := srv.handleReferenceData(context.Background(), call("reference-data", map[string]any{
		"property_type": "Appartement",
	}))
	require.NoError(t, err)
	text := extractText(result)
	assert.True(t, strings.Contains(text, `"floor": true`), text)
	assert.Contains(t, text, `"label": "Ascenseur"`)

	result, err = srv.handleReferenceData(context.Background(), call("reference-data", map[string]any{
		"property_type": "Castle",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestStartStop(t *testing.T) {
	srv := New(testCatalog(t), &fakePredictor{}, nil, "test")

	port, err := srv.Start("127.0.0.1:0")
	require.NoError(t, err)
	assert.NotZero(t, port)
	assert.Contains(t, srv.URL(), "/mcp")

	_, err = srv.Start("127.0.0.1:0")
	assert.Error(t, err)

	require.NoError(t, srv.Stop(context.Background()))
	require.NoError(t, srv.Stop(context.Background()))
}
