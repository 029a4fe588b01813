package config

// DefaultBackgroundTheme 未知主题回退到的背景主题
const DefaultBackgroundTheme = "default"

// BackgroundPalettes 背景漂浮粒子的主题调色板
var BackgroundPalettes = map[string][]string{
	"default": {"#E8F4FD", "#D4E7F7", "#C1DBF1"},
	"spring":  {"#FFE4E6", "#E8F5E8", "#F0F8E8"},
	"summer":  {"#FFF2CC", "#FFE4B5", "#E6F3FF"},
	"autumn":  {"#FFE4CC", "#E8D5B7", "#D2B48C"},
	"winter":  {"#E6F3FF", "#DDEEFF", "#CCE5FF"},
	"night":   {"#2C2C54", "#40407A", "#706FD3"},
	"cosmic":  {"#2F1B69", "#A29BFE", "#6C5CE7"},
}

// BackgroundThemeOrder 主题切换顺序
var BackgroundThemeOrder = []string{"default", "spring", "summer", "autumn", "winter", "night", "cosmic"}

// GetBackgroundColors 获取背景主题的调色板，未知主题返回 default
func GetBackgroundColors(theme string) []string {
	if colors, ok := BackgroundPalettes[theme]; ok {
		return colors
	}
	return BackgroundPalettes[DefaultBackgroundTheme]
}
