package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TestPlaceholder is the token desired-state documents use for the mapping
// function ARN.
const TestPlaceholder = "<<ARNREPLACE>>"

// FlowContent returns minimal flow-language content whose single action
// invokes the function identified by invoke. Pass TestPlaceholder to get
// an unresolved document.
func FlowContent(invoke string) string {
	return fmt.Sprintf(`{"Version":"2019-10-30","StartAction":"a1","Actions":[`+
		`{"Identifier":"a1","Type":"InvokeLambdaFunction","Parameters":{"LambdaFunctionARN":%q},"Transitions":{}}]}`,
		invoke)
}

// FlowDocument returns a desired-state object body. HTML escaping is off so a
// placeholder inside content stays literal.
func FlowDocument(name, flowType, content string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]string{
		"Name":            name,
		"ContactFlowType": flowType,
		"Content":         content,
	}); err != nil {
		panic(err)
	}
	return bytes.TrimSpace(buf.Bytes())
}

// RawFlowDocument returns a desired-state object body whose Content embeds
// the placeholder inside the JSON string without escaping, the way authored
// documents are stored.
func RawFlowDocument(name, flowType string) []byte {
	return []byte(fmt.Sprintf(`{"Name":%q,"ContactFlowType":%q,"Content":"{\"LambdaFunctionARN\":\"%s\"}"}`,
		name, flowType, TestPlaceholder))
}
