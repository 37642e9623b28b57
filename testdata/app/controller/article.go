package controller

// Article is a versioned resource with an extra feed page.
//
// @Controller {value: api, options: {version: 2}}
// @Resource {value: articles, ext: json}
type Article struct{}

// Feed lists the newest articles.
//
// @GetMapping {value: "articles/feed", name: articles.feed}
func (a *Article) Feed() {}
