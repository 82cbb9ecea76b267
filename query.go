package logware

import (
	"fmt"
	"net/url"
)

// encodeQuery converts GET data into query parameters.
func encodeQuery(data any) (url.Values, error) {
	switch v := data.(type) {
	case nil:
		return url.Values{}, nil
	case url.Values:
		return v, nil
	case map[string]string:
		query := url.Values{}
		for key, value := range v {
			query.Set(key, value)
		}
		return query, nil
	case map[string]any:
		query := url.Values{}
		for key, value := range v {
			switch values := value.(type) {
			case []string:
				for _, item := range values {
					query.Add(key, item)
				}
			case []any:
				for _, item := range values {
					query.Add(key, fmt.Sprint(item))
				}
			default:
				query.Set(key, fmt.Sprint(value))
			}
		}
		return query, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedQuery, data)
	}
}
