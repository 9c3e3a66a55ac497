package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/mark3labs/estimatr/internal/estimate"
	"github.com/mark3labs/estimatr/internal/history"
	"github.com/mark3labs/estimatr/internal/logger"
	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("estimate-price",
			mcp.WithDescription("Estimate the price of a property. Use reference-data first to discover valid types, cities, neighborhoods and amenities."),
			mcp.WithString("property_type", mcp.Required(),
				mcp.Description("Property type id"),
			),
			mcp.WithString("city", mcp.Required(),
				mcp.Description("City name"),
			),
			mcp.WithString("neighborhood", mcp.Required(),
				mcp.Description("Neighborhood name, must belong to the city"),
			),
			mcp.WithNumber("surface", mcp.Required(),
				mcp.Description("Surface in square meters, greater than 0"),
			),
			mcp.WithNumber("bedrooms",
				mcp.Description("Bedroom count. Required unless the type has no bedrooms"),
			),
			mcp.WithNumber("bathrooms",
				mcp.Description("Bathroom count. Required unless the type has no bedrooms"),
			),
			mcp.WithNumber("floor",
				mcp.Description("Floor number, for types that have one (default 0)"),
			),
			mcp.WithArray("amenities",
				mcp.Description("Amenity ids present in the property"),
				mcp.Items(map[string]any{"type": "string"}),
			),
		),
		s.handleEstimatePrice,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("reference-data",
			mcp.WithDescription("List property types and cities with their neighborhoods, or the fields that apply to one property type"),
			mcp.WithString("property_type",
				mcp.Description("When set, describe the fields of this type instead"),
			),
		),
		s.handleReferenceData,
	)
}

// handleEstimatePrice walks the arguments through the wizard steps, then
// submits the resulting request.
func (s *Server) handleEstimatePrice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultError("no arguments provided"), nil
	}

	w := estimate.NewWizard(s.cat)

	typ, _ := args["property_type"].(string)
	if err := w.SelectType(typ); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !w.Advance() {
		return mcp.NewToolResultError("property_type is required"), nil
	}

	city, _ := args["city"].(string)
	neighborhood, _ := args["neighborhood"].(string)
	w.SelectCity(city)
	if err := w.SelectNeighborhood(neighborhood); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !w.Advance() {
		return mcp.NewToolResultError("city and neighborhood are required"), nil
	}

	w.SetSurface(numberArg(args, "surface"))
	w.SetBedrooms(numberArg(args, "bedrooms"))
	w.SetBathrooms(numberArg(args, "bathrooms"))
	if !w.Advance() {
		if s.cat.OmitsBedrooms(typ) {
			return mcp.NewToolResultError("surface must be a number greater than 0"), nil
		}
		return mcp.NewToolResultError("surface must be a number greater than 0, bedrooms and bathrooms whole numbers >= 0"), nil
	}

	if w.Layout().Floor {
		w.SetFloor(numberArg(args, "floor"))
	}
	if raw, ok := args["amenities"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return mcp.NewToolResultError("amenities must be an array of strings"), nil
		}
		for _, item := range list {
			id, _ := item.(string)
			if err := w.SetAmenity(id, true); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("%v (applicable: %v)", err, w.Layout().Amenities)), nil
			}
		}
	}

	req, err := w.Request()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.predictor.Predict(ctx, req)
	if err != nil {
		logger.Warn("Prediction failed: %v", err)
		return mcp.NewToolResultError(fmt.Sprintf("prediction failed: %v", err)), nil
	}

	if s.recorder != nil {
		if _, err := s.recorder.Record(ctx, history.Entry{
			Request:        req,
			FormattedPrice: res.FormattedPrice,
			PredictedPrice: res.PredictedPrice,
		}); err != nil {
			logger.Warn("Failed to record estimate: %v", err)
		}
	}

	return mcp.NewToolResultText(fmt.Sprintf("Estimated price: %s", res.FormattedPrice)), nil
}

type typeInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type catalogInfo struct {
	Types         []typeInfo          `json:"types"`
	Neighborhoods map[string][]string `json:"neighborhoods_by_city"`
}

type amenityInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type layoutInfo struct {
	PropertyType string        `json:"property_type"`
	Label        string        `json:"label"`
	Bedrooms     bool          `json:"bedrooms"`
	Floor        bool          `json:"floor"`
	Amenities    []amenityInfo `json:"amenities"`
}

func (s *Server) handleReferenceData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	typ, _ := args["property_type"].(string)

	var out any
	if typ == "" {
		info := catalogInfo{Neighborhoods: make(map[string][]string)}
		for _, pt := range s.cat.Types() {
			info.Types = append(info.Types, typeInfo{ID: pt.ID, Label: pt.Label})
		}
		for _, city := range s.cat.Cities() {
			info.Neighborhoods[city] = s.cat.Neighborhoods(city)
		}
		out = info
	} else {
		if !s.cat.HasType(typ) {
			return mcp.NewToolResultError(fmt.Errorf("%w: %q", estimate.ErrUnknownType, typ).Error()), nil
		}
		layout := estimate.DeriveLayout(s.cat, typ)
		info := layoutInfo{
			PropertyType: typ,
			Label:        s.cat.TypeLabel(typ),
			Bedrooms:     !s.cat.OmitsBedrooms(typ),
			Floor:        layout.Floor,
			Amenities:    []amenityInfo{},
		}
		for _, id := range layout.Amenities {
			info.Amenities = append(info.Amenities, amenityInfo{ID: id, Label: s.cat.Label(id)})
		}
		out = info
	}

	data, err := sonic.ConfigStd.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errors.New("failed to encode reference data")
	}
	return mcp.NewToolResultText(string(data)), nil
}

// numberArg renders a numeric argument as the raw text a user would type.
// Missing or non-numeric arguments yield "".
func numberArg(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case string:
		return v
	}
	return ""
}
