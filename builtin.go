package zlink

import (
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/zeenix/zlink/varlinkdef"
)

//go:embed org.varlink.service.varlink
var builtinDefinition string

const builtinInterface = "org.varlink.service"

// Built-in error names.
const (
	ErrInterfaceNotFound    = builtinInterface + ".InterfaceNotFound"
	ErrMethodNotFound       = builtinInterface + ".MethodNotFound"
	ErrMethodNotImplemented = builtinInterface + ".MethodNotImplemented"
	ErrInvalidParameter     = builtinInterface + ".InvalidParameter"
	ErrPermissionDenied     = builtinInterface + ".PermissionDenied"
	ErrExpectedMore         = builtinInterface + ".ExpectedMore"
)

// InterfaceNotFoundError payload.
type InterfaceNotFoundError struct{ Interface string `json:"interface"` }

// MethodNotFoundError payload.
type MethodNotFoundError struct{ Method string `json:"method"` }

// MethodNotImplementedError payload.
type MethodNotImplementedError struct{ Method string `json:"method"` }

// InvalidParameterError payload.
type InvalidParameterError struct{ Parameter string `json:"parameter"` }

// PermissionDeniedError payload (no fields).
type PermissionDeniedError struct{}

// ExpectedMoreError payload (no fields).
type ExpectedMoreError struct{}

type getInfoOut struct {
	Vendor     string   `json:"vendor"`
	Product    string   `json:"product"`
	Version    string   `json:"version"`
	URL        string   `json:"url"`
	Interfaces []string `json:"interfaces"`
}

type getInterfaceDescriptionIn struct {
	Interface string `json:"interface"`
}

type getInterfaceDescriptionOut struct {
	Description string `json:"description"`
}

// builtinService wraps a user Service, answering org.varlink.service
// methods itself and delegating everything else. It is what
// the Server actually dispatches Calls to.
type builtinService struct {
	inner  Service
	config Config
}

func newBuiltinService(inner Service, cfg Config) *builtinService {
	return &builtinService{inner: inner, config: cfg}
}

// Interfaces implements Service, prefixing the built-in interface itself.
func (s *builtinService) Interfaces() []string {
	return append([]string{builtinInterface}, s.inner.Interfaces()...)
}

// InterfaceDescription implements Service.
func (s *builtinService) InterfaceDescription(name string) (string, bool) {
	if name == builtinInterface {
		return builtinDefinition, true
	}
	return s.inner.InterfaceDescription(name)
}

// Handle implements Service, dispatching org.varlink.service.* locally and
// everything else to the wrapped Service.
func (s *builtinService) Handle(call *Call) MethodReply {
	switch call.Method {
	case builtinInterface + ".GetInfo":
		return SingleReply(getInfoOut{
			Vendor:     s.config.ServiceVendor,
			Product:    s.config.ServiceProduct,
			Version:    s.config.ServiceVersion,
			URL:        s.config.ServiceURL,
			Interfaces: s.Interfaces(),
		})
	case builtinInterface + ".GetInterfaceDescription":
		if s.config.IDL == IDLOff {
			return ErrorReply(ErrMethodNotFound, MethodNotFoundError{Method: call.Method})
		}
		var in getInterfaceDescriptionIn
		if err := json.Unmarshal(call.Parameters, &in); err != nil {
			return ErrorReply(ErrInvalidParameter, InvalidParameterError{Parameter: "interface"})
		}
		desc, ok := s.InterfaceDescription(in.Interface)
		if !ok {
			return ErrorReply(ErrInterfaceNotFound, InterfaceNotFoundError{Interface: in.Interface})
		}
		if s.config.IDL == IDLDescriptorsAndParser {
			if _, err := varlinkdef.Read(strings.NewReader(desc)); err != nil {
				return ErrorReply(ErrInvalidParameter, InvalidParameterError{Parameter: "interface"})
			}
		}
		return SingleReply(getInterfaceDescriptionOut{Description: desc})
	default:
		return s.inner.Handle(call)
	}
}

// builtinErrorName reports whether name is one of the built-in error
// names, so the client layer can surface it as a ServiceError rather than
// attempting the user error type.
func builtinErrorName(name string) bool {
	switch name {
	case ErrInterfaceNotFound, ErrMethodNotFound, ErrMethodNotImplemented,
		ErrInvalidParameter, ErrPermissionDenied, ErrExpectedMore:
		return true
	default:
		return false
	}
}

func builtinErrorValue(name string) any {
	switch name {
	case ErrInterfaceNotFound:
		return &InterfaceNotFoundError{}
	case ErrMethodNotFound:
		return &MethodNotFoundError{}
	case ErrMethodNotImplemented:
		return &MethodNotImplementedError{}
	case ErrInvalidParameter:
		return &InvalidParameterError{}
	case ErrPermissionDenied:
		return &PermissionDeniedError{}
	case ErrExpectedMore:
		return &ExpectedMoreError{}
	default:
		return nil
	}
}

// decodeServiceError attempts to parse reply as a built-in ServiceError; ok
// is false if name is not a recognized built-in error name.
func decodeServiceError(reply *Reply) (*ServiceError, bool) {
	if !builtinErrorName(reply.Error) {
		return nil, false
	}
	v := builtinErrorValue(reply.Error)
	if len(reply.Parameters) > 0 {
		_ = json.Unmarshal(reply.Parameters, v)
	}
	return &ServiceError{Name: reply.Error, Parameters: v}, true
}
