package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// EffectSettings 视觉效果设置
// 与 data/effects.yaml 的区别：这里保存的是玩家的选择（品质档位、开关），
// 而非粒子参数本身
type EffectSettings struct {
	QualityLevel    string `yaml:"qualityLevel"`    // 品质档位：low/medium/high/ultra
	ParticlesOn     bool   `yaml:"particlesOn"`     // 粒子效果开关
	AdaptiveQuality bool   `yaml:"adaptiveQuality"` // 根据帧率自动调节品质
	ShowStats       bool   `yaml:"showStats"`       // 显示粒子统计信息
}

// DefaultEffectSettings 返回默认效果设置
func DefaultEffectSettings() *EffectSettings {
	return &EffectSettings{
		QualityLevel:    "high",
		ParticlesOn:     true,
		AdaptiveQuality: true,
		ShowStats:       false,
	}
}

// EffectSettingsManager 效果设置管理器
// 负责效果设置的加载、保存和内存管理
type EffectSettingsManager struct {
	gdataManager *gdata.Manager  // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *EffectSettings // 当前设置
}

// 存储路径常量
const (
	effectSettingsObject   = "settings"
	effectSettingsProperty = "effects"
)

// NewEffectSettingsManager 创建新的效果设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 返回：
//   - *EffectSettingsManager: 设置管理器实例
//   - error: 保留用于将来的初始化错误，加载失败不会返回错误
func NewEffectSettingsManager(gdataManager *gdata.Manager) (*EffectSettingsManager, error) {
	sm := &EffectSettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultEffectSettings(),
	}

	// 尝试加载已保存的设置
	if err := sm.Load(); err != nil {
		// 加载失败不是致命错误，使用默认设置
		log.Printf("[EffectSettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm, nil
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或文件不存在，使用默认设置
func (sm *EffectSettingsManager) Load() error {
	// 降级模式：无法持久化，使用默认设置
	if sm.gdataManager == nil {
		sm.settings = DefaultEffectSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(effectSettingsObject, effectSettingsProperty) {
		sm.settings = DefaultEffectSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(effectSettingsObject, effectSettingsProperty)
	if err != nil {
		sm.settings = DefaultEffectSettings()
		return fmt.Errorf("failed to load effect settings: %w", err)
	}

	// 先填充默认值，旧版本存档缺少的字段保持默认
	loaded := DefaultEffectSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultEffectSettings()
		return fmt.Errorf("failed to unmarshal effect settings: %w", err)
	}

	sm.settings = loaded
	log.Printf("[EffectSettingsManager] Settings loaded (quality=%s, particles=%v)",
		loaded.QualityLevel, loaded.ParticlesOn)
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *EffectSettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal effect settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(effectSettingsObject, effectSettingsProperty, data); err != nil {
		return fmt.Errorf("failed to save effect settings: %w", err)
	}

	log.Printf("[EffectSettingsManager] Settings saved successfully")
	return nil
}

// GetSettings 获取当前设置
func (sm *EffectSettingsManager) GetSettings() *EffectSettings {
	return sm.settings
}

// SetQualityLevel 设置品质档位
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *EffectSettingsManager) SetQualityLevel(level string) {
	sm.settings.QualityLevel = level
}

// SetParticlesOn 设置粒子效果开关
func (sm *EffectSettingsManager) SetParticlesOn(on bool) {
	sm.settings.ParticlesOn = on
}

// SetAdaptiveQuality 设置自适应品质
func (sm *EffectSettingsManager) SetAdaptiveQuality(on bool) {
	sm.settings.AdaptiveQuality = on
}

// SetShowStats 设置统计信息显示
func (sm *EffectSettingsManager) SetShowStats(on bool) {
	sm.settings.ShowStats = on
}
