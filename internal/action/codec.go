package action

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Marshal encodes an action as its wire object: the variant's payload
// fields plus a "type" discriminator. Keys are emitted in sorted order so
// encoded actions are byte-stable.
func Marshal(a Action) ([]byte, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", a.Kind(), err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("encode %s: %w", a.Kind(), err)
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage, 1)
	}
	fields["type"], err = json.Marshal(a.Kind())
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", a.Kind(), err)
	}

	// Maps marshal with sorted keys.
	return json.Marshal(fields)
}

// Unmarshal decodes a wire object back into its action variant. Unknown
// discriminators and unknown payload fields are errors: the union is
// closed, so anything outside it is malformed input, not a new action.
func Unmarshal(data []byte) (Action, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}

	rawKind, ok := fields["type"]
	if !ok {
		return nil, fmt.Errorf("decode action: missing \"type\" discriminator")
	}
	var kind Kind
	if err := json.Unmarshal(rawKind, &kind); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}

	decode, ok := decoders[kind]
	if !ok {
		return nil, fmt.Errorf("decode action: unknown type %q", kind)
	}

	delete(fields, "type")
	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}

	a, err := decode(payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return a, nil
}

// decodeAs strictly decodes a payload into one variant.
func decodeAs[T Action](payload []byte) (Action, error) {
	var v T
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

var decoders = map[Kind]func([]byte) (Action, error){
	KindMergeBlocks:               decodeAs[MergeBlocks],
	KindFocusBlock:                decodeAs[FocusBlock],
	KindReplaceBlocks:             decodeAs[ReplaceBlocks],
	KindAutosave:                  decodeAs[Autosave],
	KindEditPost:                  decodeAs[EditPost],
	KindSavePost:                  decodeAs[SavePost],
	KindRequestPostUpdateSuccess:  decodeAs[RequestPostUpdateSuccess],
	KindRequestMetaBoxUpdates:     decodeAs[RequestMetaBoxUpdates],
	KindSetupEditor:               decodeAs[SetupEditor],
	KindResetPost:                 decodeAs[ResetPost],
	KindResetBlocks:               decodeAs[ResetBlocks],
	KindSetupNewPost:              decodeAs[SetupNewPost],
	KindFetchReusableBlocks:       decodeAs[FetchReusableBlocks],
	KindFetchReusableBlocksOK:     decodeAs[FetchReusableBlocksSuccess],
	KindFetchReusableBlocksFailed: decodeAs[FetchReusableBlocksFailure],
	KindSaveReusableBlock:         decodeAs[SaveReusableBlock],
	KindSaveReusableBlockOK:       decodeAs[SaveReusableBlockSuccess],
	KindSaveReusableBlockFailed:   decodeAs[SaveReusableBlockFailure],
	KindUpdateReusableBlock:       decodeAs[UpdateReusableBlock],
	KindConvertBlockToStatic:      decodeAs[ConvertBlockToStatic],
	KindConvertBlockToReusable:    decodeAs[ConvertBlockToReusable],
}

// Kinds returns every wire discriminator in the union, sorted for stable
// help text and validation output.
func Kinds() []Kind {
	out := make([]Kind, 0, len(decoders))
	for k := range decoders {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
