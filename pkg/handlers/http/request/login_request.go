package request

import (
	"fmt"

	"github.com/valyala/fastjson"
)

type LoginRequest struct {
	Value string
}

// ParseLoginRequest reads {"value": "..."}. Numbers are accepted and kept in
// their JSON form.
func ParseLoginRequest(body []byte) (*LoginRequest, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("invalid login body: %w", err)
	}
	value := v.Get("value")
	if value == nil {
		return &LoginRequest{}, nil
	}
	switch value.Type() {
	case fastjson.TypeString:
		return &LoginRequest{Value: string(value.GetStringBytes())}, nil
	case fastjson.TypeNumber:
		return &LoginRequest{Value: value.String()}, nil
	default:
		return nil, fmt.Errorf("invalid login body: value must be a string, got %s", value.Type())
	}
}
