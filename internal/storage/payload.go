package storage

import (
	"strconv"

	"github.com/qdrant/go-client/qdrant"
)

func toPoint(r VectorRecord) *qdrant.PointStruct {
	return &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(PointID(r.ID)),
		Vectors: qdrant.NewVectors(r.Values...),
		Payload: qdrant.NewValueMap(map[string]any{
			PayloadVectorID:    r.ID,
			PayloadLoc:         r.Metadata.Loc,
			PayloadPageContent: r.Metadata.PageContent,
			PayloadTxtPath:     r.Metadata.TxtPath,
			PayloadDocLink:     r.Metadata.DocLink,
		}),
	}
}

func toMatch(p *qdrant.ScoredPoint) QueryMatch {
	fields := payloadToMap(p.GetPayload())

	id := pointIDString(p.GetId())
	if recordID, ok := fields[PayloadVectorID].(string); ok && recordID != "" {
		id = recordID
	}

	return QueryMatch{
		ID:       id,
		Score:    p.GetScore(),
		Values:   denseValues(p.GetVectors()),
		Metadata: fields,
	}
}

func pointIDString(id *qdrant.PointId) string {
	if u := id.GetUuid(); u != "" {
		return u
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

func denseValues(v *qdrant.VectorsOutput) []float32 {
	out := v.GetVector()
	if out == nil {
		return nil
	}
	if dense := out.GetDense(); dense != nil {
		return dense.GetData()
	}
	// older servers only fill the flat data field
	return out.GetData()
}

func payloadToMap(payload map[string]*qdrant.Value) map[string]any {
	fields := make(map[string]any, len(payload))
	for k, v := range payload {
		fields[k] = valueToAny(v)
	}
	return fields
}

func valueToAny(v *qdrant.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_ListValue:
		values := kind.ListValue.GetValues()
		list := make([]any, len(values))
		for i, item := range values {
			list[i] = valueToAny(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return payloadToMap(kind.StructValue.GetFields())
	default:
		return nil
	}
}
