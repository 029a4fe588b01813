package main

import (
	"sort"
	"strings"

	"github.com/decker502/bubblefx/pkg/config"
	"github.com/decker502/bubblefx/pkg/systems"
)

const (
	// viewerBubbleSize bubble:<type> 条目使用的泡泡半径
	viewerBubbleSize = 40
	// defaultIntensity fx:<kind> 条目的默认强度
	defaultIntensity = 1.0
)

// comboCounts combo:<type> 条目使用的连击数
var comboCounts = map[systems.ComboType]int{
	systems.ComboBasic:       3,
	systems.ComboEnhanced:    7,
	systems.ComboSpectacular: 12,
}

// specialEffectColors 单独预览特殊效果时使用的颜色
var specialEffectColors = map[systems.EffectKind]string{
	systems.EffectSparkles:  "#FFD700",
	systems.EffectSparks:    "#00FFFF",
	systems.EffectSpikes:    "#FF6347",
	systems.EffectShards:    "#B0E0E6",
	systems.EffectExplosion: "#FF4500",
	systems.EffectCloud:     "#9ACD32",
	systems.EffectRipple:    "#FFFFFF",
}

// effectEntry 一个可预览的效果
type effectEntry struct {
	Name  string
	Spawn func(pm *systems.ParticleManager, x, y float64) int
}

// buildCatalog returns every previewable effect sorted by name: the
// special effects at the given intensity, one bubble pop per bubble type and
// one entry per combo type.
func buildCatalog(intensity float64) []effectEntry {
	entries := make([]effectEntry, 0, len(specialEffectColors)+len(config.BubblePalettes)+len(comboCounts))

	for kind := systems.EffectKind(0); kind < systems.EffectKindCount; kind++ {
		color, ok := specialEffectColors[kind]
		if !ok {
			// bubblePop/comboStars 需要泡泡类型或连击数，下面单独列出
			continue
		}
		kind := kind
		entries = append(entries, effectEntry{
			Name: "fx:" + kind.String(),
			Spawn: func(pm *systems.ParticleManager, x, y float64) int {
				return pm.CreateSpecialEffect(kind, x, y, color, intensity)
			},
		})
	}

	for bubbleType := range config.BubblePalettes {
		bubbleType := bubbleType
		entries = append(entries, effectEntry{
			Name: "bubble:" + bubbleType,
			Spawn: func(pm *systems.ParticleManager, x, y float64) int {
				return pm.CreateBubbleEffect(x, y, bubbleType, viewerBubbleSize)
			},
		})
	}

	for comboType, count := range comboCounts {
		comboType, count := comboType, count
		entries = append(entries, effectEntry{
			Name: "combo:" + string(comboType),
			Spawn: func(pm *systems.ParticleManager, x, y float64) int {
				return pm.CreateEnhancedComboEffect(x, y, count, comboType)
			},
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// filterEffects returns entries matching the query (case-insensitive substring match)
func filterEffects(all []effectEntry, query string) []effectEntry {
	if query == "" {
		return all
	}

	queryLower := strings.ToLower(query)
	filtered := make([]effectEntry, 0)
	for _, e := range all {
		if strings.Contains(strings.ToLower(e.Name), queryLower) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// indexOf returns the position of name in entries, or -1.
func indexOf(entries []effectEntry, name string) int {
	for i, e := range entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}
