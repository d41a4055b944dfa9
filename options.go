package zlink

import "github.com/rs/zerolog"

// Profile selects the runtime profile of the Configuration surface:
// heap+stdlib-JSON grows the Buffer and uses encoding/json, while
// fixed+small-JSON caps the Buffer at its capacity class and returns
// BufferOverflowError instead of growing. zlink's core always uses
// encoding/json for serialization; the "small-JSON" half of the fixed
// profile only affects Buffer growth behavior here.
type Profile int

const (
	ProfileHeap Profile = iota
	ProfileFixed
)

// IDLSurface selects how much of the introspection surface a Server
// answers org.varlink.service.GetInterfaceDescription with: IDLOff
// answers MethodNotFound for it, IDLDescriptorsOnly serves each
// Service's raw IDL text as-is, and IDLDescriptorsAndParser additionally
// round-trips that text through varlinkdef.Read before serving it,
// answering InvalidParameter instead of a description that does not
// actually parse.
type IDLSurface int

const (
	IDLOff IDLSurface = iota
	IDLDescriptorsOnly
	IDLDescriptorsAndParser
)

// Config is the resolved build-time selection surface. It is
// built once, via Option values, at Server/Proxy construction.
type Config struct {
	Profile        Profile
	CapacityClass  CapacityClass
	Pipelining     bool
	IDL            IDLSurface
	Logger         zerolog.Logger
	ServiceVendor  string
	ServiceProduct string
	ServiceVersion string
	ServiceURL     string
}

// DefaultConfig returns the Config used when no Options are passed:
// heap profile, 16KiB initial capacity, pipelining enabled, full IDL
// surface, and a disabled logger (observability is opt-in).
func DefaultConfig() Config {
	return Config{
		Profile:       ProfileHeap,
		CapacityClass: Capacity16KiB,
		Pipelining:    true,
		IDL:           IDLDescriptorsAndParser,
		Logger:        zerolog.Nop(),
	}
}

// Option configures a Config.
type Option func(*Config)

// WithProfile selects the runtime profile.
func WithProfile(p Profile) Option { return func(c *Config) { c.Profile = p } }

// WithCapacityClass selects the Buffer's initial/maximum capacity class.
func WithCapacityClass(class CapacityClass) Option {
	return func(c *Config) { c.CapacityClass = class }
}

// WithPipelining enables or disables client-side pipelining support.
func WithPipelining(enabled bool) Option { return func(c *Config) { c.Pipelining = enabled } }

// WithIDLSurface selects how much introspection machinery is active.
func WithIDLSurface(s IDLSurface) Option { return func(c *Config) { c.IDL = s } }

// WithLogger attaches a zerolog.Logger for Connection/Call observability.
func WithLogger(l zerolog.Logger) Option { return func(c *Config) { c.Logger = l } }

// WithServiceInfo sets the vendor/product/version/url reported by
// org.varlink.service.GetInfo.
func WithServiceInfo(vendor, product, version, url string) Option {
	return func(c *Config) {
		c.ServiceVendor = vendor
		c.ServiceProduct = product
		c.ServiceVersion = version
		c.ServiceURL = url
	}
}

func resolve(opts []Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
