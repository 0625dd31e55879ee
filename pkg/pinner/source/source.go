package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/vincent-petithory/dataurl"
)

// Kind discriminates the supported upload inputs.
type Kind int

const (
	KindReader Kind = iota
	KindDataUrl
	KindRemoteUrl
)

// Source is an upload input: raw content behind a reader, an inline
// data: URL, or an http(s) URL whose body is the content.
type Source struct {
	kind   Kind
	name   string
	reader io.Reader
	url    string
}

// Payload is a Source normalized to bytes, ready to be pinned.
type Payload struct {
	Name        string
	ContentType string
	Data        []byte
}

func FromReader(name string, r io.Reader) Source {
	if name == "" {
		name = uuid.NewString()
	}

	return Source{
		kind:   KindReader,
		name:   name,
		reader: r,
	}
}

// FromString dispatches on the string's shape: data: URLs and http(s)
// URLs are accepted, anything else is rejected.
func FromString(s string) (Source, error) {
	switch {
	case strings.HasPrefix(s, "data:"):
		return Source{
			kind: KindDataUrl,
			name: uuid.NewString(),
			url:  s,
		}, nil
	case strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://"):
		return Source{
			kind: KindRemoteUrl,
			url:  s,
		}, nil
	default:
		return Source{}, fmt.Errorf("unsupported input %q: expected a data: URL or an http(s) URL", truncate(s, 64))
	}
}

func (s Source) Kind() Kind {
	return s.kind
}

func (s Source) Name() string {
	return s.name
}

func (s Source) Url() string {
	return s.url
}

func (s Source) Reader() io.Reader {
	return s.reader
}

// DecodeDataUrl decodes a data: URL into a payload, handling both
// base64 and percent-encoded bodies.
func DecodeDataUrl(s Source) (*Payload, error) {
	if s.kind != KindDataUrl {
		return nil, fmt.Errorf("source is not a data url")
	}

	decoded, err := dataurl.DecodeString(s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data url: %v", err)
	}

	return &Payload{
		Name:        s.name,
		ContentType: decoded.MediaType.ContentType(),
		Data:        decoded.Data,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
