// Package exampleapi is a hand-written org.example Service implementing
// org.example.varlink; its Backend takes plain arguments rather than the
// In/Out structs cmd/varlinkgen would emit. It backs the
// example server and the certification-style client in cmd/certification,
// and exercises every MethodReply shape: Single, Error, and Multi.
package exampleapi

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/zeenix/zlink"
)

// InterfaceName is the interface-dotted prefix for every method below.
const InterfaceName = "org.example"

//go:embed org.example.varlink
var definition string

// DivisionByZeroError is returned by Divide when B is zero.
type DivisionByZeroError struct {
	Message string `json:"message"`
}

func (err *DivisionByZeroError) Error() string {
	return fmt.Sprintf("varlink: call failed: %s.DivisionByZero", InterfaceName)
}

// VarlinkErrorName implements zlink.Named.
func (err *DivisionByZeroError) VarlinkErrorName() string {
	return InterfaceName + ".DivisionByZero"
}

type addIn struct {
	A int `json:"a"`
	B int `json:"b"`
}

type addOut struct {
	Result int `json:"result"`
}

type divideIn struct {
	A int `json:"a"`
	B int `json:"b"`
}

type divideOut struct {
	Result int `json:"result"`
}

type logIn struct {
	Message string `json:"message"`
}

type countIn struct {
	N int `json:"n"`
}

type countOut struct {
	I int `json:"i"`
}

// Backend is the user-supplied implementation behind Service.
type Backend interface {
	Add(a, b int) int
	Divide(a, b int) (int, error)
	Log(message string)
}

// Service adapts a Backend into a zlink.Service implementing org.example:
// Ping (empty Single reply), Add (Single), Divide (Single or
// DivisionByZero Error), Log (oneway), Count (Multi streaming reply).
type Service struct {
	Backend Backend
}

// Interfaces implements zlink.Service.
func (s Service) Interfaces() []string { return []string{InterfaceName} }

// InterfaceDescription implements zlink.Service.
func (s Service) InterfaceDescription(name string) (string, bool) {
	if name == InterfaceName {
		return definition, true
	}
	return "", false
}

// Handle implements zlink.Service.
func (s Service) Handle(call *zlink.Call) zlink.MethodReply {
	switch call.Method {
	case InterfaceName + ".Ping":
		return zlink.SingleReply(nil)

	case InterfaceName + ".Add":
		var in addIn
		if err := json.Unmarshal(call.Parameters, &in); err != nil {
			return zlink.ErrorReply(zlink.ErrInvalidParameter, zlink.InvalidParameterError{Parameter: "a"})
		}
		return zlink.SingleReply(addOut{Result: s.Backend.Add(in.A, in.B)})

	case InterfaceName + ".Divide":
		var in divideIn
		if err := json.Unmarshal(call.Parameters, &in); err != nil {
			return zlink.ErrorReply(zlink.ErrInvalidParameter, zlink.InvalidParameterError{Parameter: "a"})
		}
		result, err := s.Backend.Divide(in.A, in.B)
		if err != nil {
			if dbz, ok := err.(*DivisionByZeroError); ok {
				return zlink.ErrorReply(dbz.VarlinkErrorName(), dbz)
			}
			return zlink.ErrorReply(zlink.ErrMethodNotImplemented, zlink.MethodNotImplementedError{Method: call.Method})
		}
		return zlink.SingleReply(divideOut{Result: result})

	case InterfaceName + ".Log":
		var in logIn
		if err := json.Unmarshal(call.Parameters, &in); err == nil {
			s.Backend.Log(in.Message)
		}
		return zlink.SingleReply(nil)

	case InterfaceName + ".Count":
		var in countIn
		if err := json.Unmarshal(call.Parameters, &in); err != nil {
			return zlink.ErrorReply(zlink.ErrInvalidParameter, zlink.InvalidParameterError{Parameter: "n"})
		}
		i := 0
		return zlink.MultiReply(zlink.FuncSequence(func() (any, bool, error) {
			if i >= in.N {
				return nil, false, nil
			}
			out := countOut{I: i}
			i++
			return out, true, nil
		}))

	default:
		return zlink.ErrorReply(zlink.ErrMethodNotFound, zlink.MethodNotFoundError{Method: call.Method})
	}
}
