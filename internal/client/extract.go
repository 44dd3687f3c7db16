package client

import (
	"encoding/json"
	"strconv"
	"strings"
)

// urlExtractor pulls an image URL out of one known response shape
type urlExtractor func(doc map[string]any) string

// Generation results have been seen under each of these keys. Order matters.
var generationImageExtractors = []urlExtractor{
	imagesAt(),
	imagesAt("data"),
	imagesAt("output"),
}

// imagesAt reads images[0].url below the given path
func imagesAt(path ...string) urlExtractor {
	return func(doc map[string]any) string {
		node := doc
		for _, key := range path {
			child, ok := node[key].(map[string]any)
			if !ok {
				return ""
			}
			node = child
		}
		images, ok := node["images"].([]any)
		if !ok || len(images) == 0 {
			return ""
		}
		first, ok := images[0].(map[string]any)
		if !ok {
			return ""
		}
		url, _ := first["url"].(string)
		if url = strings.TrimSpace(url); !looksLikeImage(url) {
			return ""
		}
		return url
	}
}

func firstImageURL(doc map[string]any, extractors []urlExtractor) string {
	for _, extract := range extractors {
		if url := extract(doc); url != "" {
			return url
		}
	}
	return ""
}

// extractOutputURL normalizes a face-swap "output" field. It may be a URL,
// a JSON-encoded string, a list of {value: {data: url}} records or a list of URLs.
func extractOutputURL(output any) string {
	for _, extract := range []func(any) string{
		directURL,
		jsonEncodedURL,
		valueDataURL,
		stringListURL,
		urlFieldURL,
	} {
		if url := extract(output); url != "" {
			return url
		}
	}
	return ""
}

func directURL(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if looksLikeImage(s) {
		return s
	}
	return ""
}

func jsonEncodedURL(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	var decoded any
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return ""
	}
	if _, isString := decoded.(string); isString {
		return directURL(decoded)
	}
	return extractOutputURL(decoded)
}

func valueDataURL(v any) string {
	items, ok := v.([]any)
	if !ok {
		return ""
	}
	for _, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}
		value, ok := record["value"].(map[string]any)
		if !ok {
			continue
		}
		if url := directURL(value["data"]); url != "" {
			return url
		}
	}
	return ""
}

func stringListURL(v any) string {
	items, ok := v.([]any)
	if !ok {
		return ""
	}
	for _, item := range items {
		if url := directURL(item); url != "" {
			return url
		}
	}
	return ""
}

func urlFieldURL(v any) string {
	record, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	return directURL(record["url"])
}

func looksLikeImage(s string) bool {
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "data:image/")
}

// jobIDKeys lists the id fields providers have used, in priority order
var jobIDKeys = []string{"request_id", "id", "requestId", "inference_id", "job_id"}

// discoverJobID finds the job id at the top level or under "result" or "data"
func discoverJobID(doc map[string]any) string {
	for _, node := range []map[string]any{doc, asMap(doc["result"]), asMap(doc["data"])} {
		if node == nil {
			continue
		}
		for _, key := range jobIDKeys {
			switch v := node[key].(type) {
			case string:
				if v != "" {
					return v
				}
			case float64:
				return strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
	}
	return ""
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// statusField reads the first non-empty of "status" and "state", upper-cased
func statusField(doc map[string]any) string {
	for _, key := range []string{"status", "state"} {
		if s, ok := doc[key].(string); ok && s != "" {
			return strings.ToUpper(strings.TrimSpace(s))
		}
	}
	return ""
}
