package config

// DefaultBubbleType 未配置时使用的泡泡类型
const DefaultBubbleType = "normal"

// BubblePalettes 各类型泡泡破裂时使用的粒子颜色
var BubblePalettes = map[string][]string{
	"normal":   {"#87CEEB", "#ADD8E6", "#B0E0E6"},
	"stone":    {"#696969", "#808080", "#A9A9A9"},
	"iron":     {"#2F4F4F", "#708090", "#778899"},
	"diamond":  {"#F0F8FF", "#E6E6FA", "#FFFFFF"},
	"rainbow":  {"#FF0000", "#FF7F00", "#FFFF00", "#00FF00", "#0000FF", "#4B0082", "#9400D3"},
	"pink":     {"#FFB6C1", "#FFC0CB", "#FF69B4"},
	"clock":    {"#FFD700", "#FFA500", "#FF8C00"},
	"electric": {"#FFFF00", "#FFFF66", "#FFFFCC"},
	"poison":   {"#9ACD32", "#ADFF2F", "#7FFF00"},
	"spiky":    {"#FF4500", "#FF6347", "#FF7F50"},
	"escape":   {"#DDA0DD", "#DA70D6", "#BA55D3"},
	"boss":     {"#8B0000", "#DC143C", "#B22222"},
	"golden":   {"#FFD700", "#FFEC8B", "#DAA520"},
	"frozen":   {"#E0FFFF", "#AFEEEE", "#B0E0E6"},
}

// GetBubbleColors 获取指定泡泡类型的调色板
// 参数:
//   - bubbleType: 泡泡类型（如 "normal", "rainbow"）
//
// 返回:
//   - 对应的颜色列表，未配置的类型返回 normal 调色板
func GetBubbleColors(bubbleType string) []string {
	if colors, ok := BubblePalettes[bubbleType]; ok {
		return colors
	}
	return BubblePalettes[DefaultBubbleType]
}
