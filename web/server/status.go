package server

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

// Message types sent as websocket text frames
const (
	msgHello    = "hello"
	msgPass     = "pass"
	msgStatus   = "status"
	msgConsole  = "console"
	msgComplete = "complete"
	msgError    = "error"
)

var statusEncoder = protojson.MarshalOptions{EmitUnpopulated: false}

// encodeMessage builds a JSON text message of the given type from fields
func encodeMessage(kind string, fields map[string]interface{}, at time.Time) ([]byte, error) {
	payload := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		payload[k] = v
	}
	payload["type"] = kind

	msg, err := structpb.NewStruct(payload)
	if err != nil {
		return nil, fmt.Errorf("building %s message: %w", kind, err)
	}
	stamp, err := timestampValue(at)
	if err != nil {
		return nil, fmt.Errorf("building %s message: %w", kind, err)
	}
	msg.Fields["timestamp"] = stamp
	data, err := statusEncoder.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding %s message: %w", kind, err)
	}
	return data, nil
}

// timestampValue renders at in the protobuf JSON form of a Timestamp: UTC RFC 3339
// with 0, 3, 6 or 9 fractional digits
func timestampValue(at time.Time) (*structpb.Value, error) {
	data, err := protojson.Marshal(timestamppb.New(at))
	if err != nil {
		return nil, fmt.Errorf("encoding timestamp: %w", err)
	}
	var value structpb.Value
	if err := protojson.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("decoding timestamp: %w", err)
	}
	return &value, nil
}

// Command is a client request decoded from a websocket text frame
type Command struct {
	Name  string
	Value float64 // exposure
	Mode  string  // tone
}

// decodeCommand parses {"command": "...", "value": ..., "mode": "..."}
func decodeCommand(data []byte) (Command, error) {
	var msg structpb.Struct
	if err := protojson.Unmarshal(data, &msg); err != nil {
		return Command{}, fmt.Errorf("decoding command: %w", err)
	}

	fields := msg.GetFields()
	cmd := Command{
		Name: fields["command"].GetStringValue(),
		Mode: fields["mode"].GetStringValue(),
	}
	if cmd.Name == "" {
		return Command{}, fmt.Errorf("missing command")
	}
	if v, ok := fields["value"]; ok {
		cmd.Value = v.GetNumberValue()
	}
	return cmd, nil
}

// statsFields flattens render statistics for a status message
func statsFields(stats renderer.RenderStats) map[string]interface{} {
	return map[string]interface{}{
		"passes":           stats.Passes,
		"totalSamples":     stats.TotalSamples,
		"averageSamples":   stats.AverageSamples,
		"meanVariance":     stats.MeanVariance,
		"averageLuminance": stats.AverageLuminance,
	}
}
