package observability

import (
	"context"
	"net/http"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer wraps the X-Ray SDK for the paths this service traces: the
// sync run and the upstream HTTP client.
type Tracer struct {
	serviceName string
}

// NewTracer creates a new tracer instance
func NewTracer(serviceName string) *Tracer {
	return &Tracer{
		serviceName: serviceName,
	}
}

// TraceFunction runs fn inside its own subsegment and records its
// error. Outside Lambda there is no parent segment; fn then runs
// untraced.
func (t *Tracer) TraceFunction(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, seg := xray.BeginSubsegment(ctx, t.serviceName+"."+name)
	if seg == nil {
		return fn(ctx)
	}
	defer seg.Close(nil)

	err := fn(ctx)
	if err != nil {
		seg.AddError(err)
	}

	return err
}

// Annotate attaches an indexed annotation to the active segment, so
// traces can be filtered by tenant in the X-Ray console.
func (t *Tracer) Annotate(ctx context.Context, key, value string) {
	if seg := xray.GetSegment(ctx); seg != nil {
		seg.AddAnnotation(key, value)
	}
}

// WrapHTTPClient instruments an HTTP client so every upstream request
// emits a subsegment with its latency and status.
func WrapHTTPClient(client *http.Client) *http.Client {
	return xray.Client(client)
}
