package gateway

import (
	"DiningApi/internal/async"
	"bytes"
	"context"
	json2 "encoding/json"
	"net/url"
)

const (
	RelSelf       = "self"
	RelCollection = "collection"
)

type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// LinkResolver builds hypermedia links for one collection mounted at Prefix, e.g. "/customers".
type LinkResolver struct {
	Prefix string
}

func NewLinkResolver(prefix string) LinkResolver {
	return LinkResolver{Prefix: prefix}
}

func (r LinkResolver) Self(baseURL, id string) async.Task[Link] {
	return func(context.Context) (Link, error) {
		href, err := url.JoinPath(baseURL, r.Prefix, id)
		if err != nil {
			return Link{}, err
		}
		return Link{Rel: RelSelf, Href: href}, nil
	}
}

func (r LinkResolver) Collection(baseURL string) async.Task[Link] {
	return func(context.Context) (Link, error) {
		href, err := url.JoinPath(baseURL, r.Prefix)
		if err != nil {
			return Link{}, err
		}
		return Link{Rel: RelCollection, Href: href}, nil
	}
}

// LinkedResource renders as the resource's own JSON object with a trailing "links" array.
type LinkedResource[T any] struct {
	Resource T
	Links    []Link
}

func (lr LinkedResource[T]) MarshalJSON() ([]byte, error) {
	resource, err := json2.Marshal(lr.Resource)
	if err != nil {
		return nil, err
	}

	links := lr.Links
	if links == nil {
		links = []Link{}
	}
	js, err := json2.Marshal(links)
	if err != nil {
		return nil, err
	}

	resource = bytes.TrimSpace(resource)
	if len(resource) < 2 || resource[0] != '{' {
		return json2.Marshal(struct {
			Resource json2.RawMessage `json:"resource"`
			Links    json2.RawMessage `json:"links"`
		}{resource, js})
	}

	var buf bytes.Buffer
	buf.Write(resource[:len(resource)-1])
	if len(resource) > 2 {
		buf.WriteByte(',')
	}
	buf.WriteString(`"links":`)
	buf.Write(js)
	buf.WriteByte('}')

	return buf.Bytes(), nil
}
