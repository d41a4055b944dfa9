package zlink

import "encoding/json"

// Call is an outbound or inbound method invocation.
//
// At most one of Oneway, More, Upgrade may be true; Proxy never constructs
// a Call that violates this directly, but a Call decoded off the wire is
// validated explicitly by the Server before it reaches a Service.
type Call struct {
	Method     string          `json:"method"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
	Oneway     bool            `json:"oneway,omitempty"`
	More       bool            `json:"more,omitempty"`
	Upgrade    bool            `json:"upgrade,omitempty"`
}

// exclusiveFlags reports whether more than one of {Oneway, More, Upgrade}
// is set.
func (c *Call) exclusiveFlags() bool {
	n := 0
	if c.Oneway {
		n++
	}
	if c.More {
		n++
	}
	if c.Upgrade {
		n++
	}
	return n > 1
}

// Validate enforces the Call's mutual-exclusion invariant.
func (c *Call) Validate() error {
	if c.exclusiveFlags() {
		return &ProtocolViolationError{Reason: "oneway, more and upgrade are mutually exclusive"}
	}
	return nil
}

// Reply is an outbound or inbound response. A Reply carrying a
// non-empty Error is the error variant; Parameters then carries the error
// payload and Continues must be false.
type Reply struct {
	Parameters json.RawMessage `json:"parameters,omitempty"`
	Continues  bool            `json:"continues,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// IsError reports whether this reply is the error variant.
func (r *Reply) IsError() bool {
	return r.Error != ""
}

// Validate enforces that an error reply never continues.
func (r *Reply) Validate() error {
	if r.IsError() && r.Continues {
		return &ProtocolViolationError{Reason: "an error reply cannot have continues=true"}
	}
	return nil
}

// terminator is the empty, non-continuing reply sent to close a Multi
// stream.
func terminator() *Reply {
	return &Reply{Continues: false}
}
