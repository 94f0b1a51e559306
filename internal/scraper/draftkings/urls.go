package draftkings

import "net/url"

// BuildURL returns the market page address for one category and subcategory
// pair. Slugs are query-escaped, so "hits-+-runs-+-rbis" is carried safely.
func BuildURL(baseURL, category, subcategory string) string {
	params := url.Values{}
	params.Set("category", category)
	params.Set("sub_category", subcategory)
	return baseURL + "?" + params.Encode()
}
