package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MergeStored overlays stored section payloads on base. JSON objects merge
// key by key, everything else (lists included) replaces. A section that fails
// to decode keeps its base value and is reported in the returned error.
func MergeStored(base Data, stored map[Section]json.RawMessage) (Data, error) {
	out := base
	var errs []error
	for _, sec := range AllSections {
		raw, ok := stored[sec]
		if !ok || len(raw) == 0 {
			continue
		}
		merged, err := mergeSection(&base, sec, raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("section %s: %w", sec, err))
			continue
		}
		out.SetPayload(sec, merged)
	}
	return out, errors.Join(errs...)
}

func mergeSection(base *Data, sec Section, raw json.RawMessage) (*Data, error) {
	baseJSON, err := json.Marshal(base.Payload(sec))
	if err != nil {
		return nil, err
	}
	var dst, src interface{}
	if err := json.Unmarshal(baseJSON, &dst); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, err
	}
	if src == nil {
		return base, nil
	}
	mergedJSON, err := json.Marshal(mergeValue(dst, src))
	if err != nil {
		return nil, err
	}

	// Decode into a fresh wrapper so no element of base is reused.
	wrapped, err := json.Marshal(map[string]json.RawMessage{string(sec): mergedJSON})
	if err != nil {
		return nil, err
	}
	var fresh Data
	if err := json.Unmarshal(wrapped, &fresh); err != nil {
		return nil, err
	}
	return &fresh, nil
}

func mergeValue(dst, src interface{}) interface{} {
	dm, ok := dst.(map[string]interface{})
	if !ok {
		return src
	}
	sm, ok := src.(map[string]interface{})
	if !ok {
		return src
	}
	for k, v := range sm {
		dm[k] = mergeValue(dm[k], v)
	}
	return dm
}

