package pool

import "encoding/json"

// entryFields mirrors Entry's known JSON fields. Splitting it out lets
// MarshalJSON/UnmarshalJSON merge the known fields with the preserved
// "extras" map without infinite recursion through Entry's own methods.
type entryFields struct {
	UUID                 string          `json:"uuid"`
	Credentials          json.RawMessage `json:"credentials"`
	CheckModelName       string          `json:"checkModelName,omitempty"`
	CheckHealth          *bool           `json:"checkHealth,omitempty"`
	NotSupportedModels   []string        `json:"notSupportedModels,omitempty"`
	IsHealthy            bool            `json:"isHealthy"`
	IsDisabled           bool            `json:"isDisabled"`
	ErrorCount           int             `json:"errorCount"`
	UsageCount           int64           `json:"usageCount"`
	LastUsed             string          `json:"lastUsed,omitempty"`
	LastErrorTime        string          `json:"lastErrorTime,omitempty"`
	LastErrorMessage     string          `json:"lastErrorMessage,omitempty"`
	LastHealthCheckTime  string          `json:"lastHealthCheckTime,omitempty"`
	LastHealthCheckModel string          `json:"lastHealthCheckModel,omitempty"`
	UsageInfo            *KiroUsageInfo  `json:"usageInfo,omitempty"`
}

var knownEntryKeys = map[string]bool{
	"uuid": true, "credentials": true, "checkModelName": true, "checkHealth": true,
	"notSupportedModels": true, "isHealthy": true, "isDisabled": true, "errorCount": true,
	"usageCount": true, "lastUsed": true, "lastErrorTime": true, "lastErrorMessage": true,
	"lastHealthCheckTime": true, "lastHealthCheckModel": true, "usageInfo": true,
}

// UnmarshalJSON decodes an entry, defaulting missing counters per §3's
// lifecycle rules and stashing any unrecognized key into extras so human
// annotations like "_comment" round-trip untouched.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var fields entryFields
	// isHealthy defaults to true when absent; decode into a shape that lets
	// us tell "absent" from "explicitly false".
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*e = Entry{
		UUID:                 fields.UUID,
		Credentials:          fields.Credentials,
		CheckModelName:       fields.CheckModelName,
		CheckHealth:          fields.CheckHealth,
		NotSupportedModels:   fields.NotSupportedModels,
		IsDisabled:           fields.IsDisabled,
		ErrorCount:           fields.ErrorCount,
		UsageCount:           fields.UsageCount,
		LastUsed:             fields.LastUsed,
		LastErrorTime:        fields.LastErrorTime,
		LastErrorMessage:     fields.LastErrorMessage,
		LastHealthCheckTime:  fields.LastHealthCheckTime,
		LastHealthCheckModel: fields.LastHealthCheckModel,
		UsageInfo:            fields.UsageInfo,
	}

	if _, present := raw["isHealthy"]; present {
		e.IsHealthy = fields.IsHealthy
	} else {
		e.IsHealthy = true
	}

	extras := make(map[string]json.RawMessage)
	for k, v := range raw {
		if !knownEntryKeys[k] {
			extras[k] = v
		}
	}
	if len(extras) > 0 {
		e.extras = extras
	}

	return nil
}

// MarshalJSON re-emits the known fields plus any preserved extras.
func (e *Entry) MarshalJSON() ([]byte, error) {
	fields := entryFields{
		UUID:                 e.UUID,
		Credentials:          e.Credentials,
		CheckModelName:       e.CheckModelName,
		CheckHealth:          e.CheckHealth,
		NotSupportedModels:   e.NotSupportedModels,
		IsHealthy:            e.IsHealthy,
		IsDisabled:           e.IsDisabled,
		ErrorCount:           e.ErrorCount,
		UsageCount:           e.UsageCount,
		LastUsed:             e.LastUsed,
		LastErrorTime:        e.LastErrorTime,
		LastErrorMessage:     e.LastErrorMessage,
		LastHealthCheckTime:  e.LastHealthCheckTime,
		LastHealthCheckModel: e.LastHealthCheckModel,
		UsageInfo:            e.UsageInfo,
	}

	known, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	if len(e.extras) == 0 {
		return known, nil
	}

	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for k, v := range e.extras {
		if !knownEntryKeys[k] {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// document is the on-disk shape: family name -> entry list. It is decoded
// generically so families the current build doesn't recognize still
// round-trip losslessly (an operator may be mid-upgrade).
type document map[string][]*Entry

func decodeDocument(data []byte) (document, error) {
	if len(data) == 0 {
		return document{}, nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = document{}
	}
	return doc, nil
}

func encodeDocument(doc document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}
