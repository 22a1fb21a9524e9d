package provider

// Options are the enhancement instructions forwarded to a provider. Both
// providers accept the same option set; each client maps it onto its own
// wire format.
type Options struct {
	Instructions          string
	SkyReplacement        bool
	WindowPull            bool
	PerspectiveCorrection bool
	AspectRatio           string
}

type Request struct {
	Filename  string
	ImageData []byte
	Options   Options
}

// Result carries the enhanced image and the identity of the provider that
// produced it.
type Result struct {
	Provider  string
	ImageData []byte
	MimeType  string
}

// Provider is the uniform capability interface the gateway iterates over.
type Provider interface {
	Name() string
	Enhance(req Request) (*Result, error)
}
