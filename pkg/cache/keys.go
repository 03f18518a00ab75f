package cache

import "fmt"

// Key builders shared by every caller so invalidation and population always
// agree on naming.

func ProductsKey(limit int) string {
	return fmt.Sprintf("products:%d", limit)
}

func ProductKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func ProductOptionsKey(productID string) string {
	return fmt.Sprintf("product-options:%s", productID)
}

func TemplatesKey() string {
	return "templates:all"
}

func TemplateKey(id string) string {
	return fmt.Sprintf("template:%s", id)
}
