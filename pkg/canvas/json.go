package canvas

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownType is returned by [DefaultData] and the node JSON
	// codec when a type tag is not one of the fixed node types.
	ErrUnknownType = errors.New("unknown node type")

	// ErrUnsupportedVersion is returned by [Read] when a document file
	// was written by a newer format version than this package
	// understands.
	ErrUnsupportedVersion = errors.New("unsupported document version")
)

// nodeEnvelope is the wire shape of a node: the data variant travels
// as a raw payload and is decoded by dispatching on the type tag.
type nodeEnvelope struct {
	ID       string          `json:"id"`
	Type     Type            `json:"type"`
	Position Point           `json:"position"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON encodes the node with its variant inlined under "data".
func (n Node) MarshalJSON() ([]byte, error) {
	env := nodeEnvelope{ID: n.ID, Type: n.Type, Position: n.Position}
	if n.Data != nil {
		raw, err := json.Marshal(n.Data)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

// UnmarshalJSON decodes a node, dispatching the data payload on the
// type tag. A missing or null payload yields the type's default data;
// an unknown type tag yields [ErrUnknownType].
func (n *Node) UnmarshalJSON(b []byte) error {
	var env nodeEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	data, err := decodeData(env.Type, env.Data)
	if err != nil {
		return fmt.Errorf("node %s: %w", env.ID, err)
	}
	n.ID = env.ID
	n.Type = env.Type
	n.Position = env.Position
	n.Data = data
	return nil
}

var nullPayload = []byte("null")

func decodeData(t Type, raw json.RawMessage) (Data, error) {
	if len(raw) == 0 || bytes.Equal(raw, nullPayload) {
		return DefaultData(t)
	}

	switch t {
	case TypeBox:
		return decodeVariant[BoxData](raw)
	case TypeSphere:
		return decodeVariant[SphereData](raw)
	case TypeCylinder:
		return decodeVariant[CylinderData](raw)
	case TypeTorus:
		return decodeVariant[TorusData](raw)
	case TypePlane:
		return decodeVariant[PlaneData](raw)
	case TypeVector:
		return decodeVariant[VectorData](raw)
	case TypeNumber:
		return decodeVariant[NumberData](raw)
	case TypeMath:
		return decodeVariant[MathData](raw)
	case TypeSeries:
		return decodeVariant[SeriesData](raw)
	case TypePanel:
		return decodeVariant[PanelData](raw)
	case TypeInspector:
		return decodeVariant[InspectorData](raw)
	case TypeViewport:
		return decodeVariant[ViewportData](raw)
	case TypeBackground:
		return decodeVariant[BackgroundData](raw)
	case TypeGroup:
		return decodeVariant[GroupData](raw)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

func decodeVariant[T Data](raw json.RawMessage) (Data, error) {
	var d T
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return d, nil
}
