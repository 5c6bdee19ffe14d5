package llm

import "context"

// Sampling holds the generation parameters a deployment pins for every call.
type Sampling struct {
	Temperature float64
	TopK        int
	MaxTokens   int
}

// SamplingFromConfig extracts the sampling settings from cfg.
func SamplingFromConfig(cfg Config) Sampling {
	return Sampling{
		Temperature: cfg.Temperature,
		TopK:        cfg.TopK,
		MaxTokens:   cfg.MaxTokens,
	}
}

// SamplingProvider fills unset sampling fields of each request with fixed
// values so callers only describe the prompt.
type SamplingProvider struct {
	inner    Provider
	sampling Sampling
}

// WithSampling wraps a Provider so requests inherit s where they leave a
// field unset. Temperature is unset when nil, so an explicit 0 survives.
func WithSampling(p Provider, s Sampling) Provider {
	return &SamplingProvider{inner: p, sampling: s}
}

func (s *SamplingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if req.Temperature == nil {
		req.Temperature = Float64(s.sampling.Temperature)
	}
	if req.TopK == 0 {
		req.TopK = s.sampling.TopK
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = s.sampling.MaxTokens
	}
	return s.inner.Generate(ctx, req)
}

func (s *SamplingProvider) ModelID() string {
	return s.inner.ModelID()
}
