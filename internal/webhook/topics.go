package webhook

import "strings"

const (
	TopicAppUninstalled = "app_uninstalled"
	TopicShopRedact     = "shop_redact"
)

// NormalizeTopic turns "app/uninstalled" into "app_uninstalled".
func NormalizeTopic(topic string) string {
	t := strings.TrimSpace(strings.ToLower(topic))
	t = strings.NewReplacer("/", "_", ".", "_", "-", "_").Replace(t)
	for strings.Contains(t, "__") {
		t = strings.ReplaceAll(t, "__", "_")
	}
	return strings.Trim(t, "_")
}
