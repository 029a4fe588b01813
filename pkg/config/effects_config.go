package config

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/decker502/bubblefx/pkg/embedded"
)

// ParticleTypeConfig 单类粒子效果的基础参数
type ParticleTypeConfig struct {
	Count int     `yaml:"count"` // 基础粒子数（乘以品质系数）
	Size  float64 `yaml:"size"`  // 基础半径（像素）
	Speed float64 `yaml:"speed"` // 基础速度（像素/秒）
	Life  float64 `yaml:"life"`  // 基础寿命（毫秒）
}

// ParticleConfig 粒子系统参数
type ParticleConfig struct {
	MaxCount       int     `yaml:"maxCount"`       // 同屏最大粒子数
	PoolSize       int     `yaml:"poolSize"`       // 对象池容量
	Quality        float64 `yaml:"quality"`        // 默认品质系数 (0,1]
	Enabled        bool    `yaml:"enabled"`        // 是否启用粒子效果
	BoundaryY      float64 `yaml:"boundaryY"`      // 反弹地面 Y 坐标（画布高度）
	MaxTrailLength int     `yaml:"maxTrailLength"` // 拖尾点数上限

	Bubble    ParticleTypeConfig `yaml:"bubble"`
	Star      ParticleTypeConfig `yaml:"star"`
	Explosion ParticleTypeConfig `yaml:"explosion"`
}

// QualityLevelSettings 品质档位
type QualityLevelSettings struct {
	ParticleQuality float64 `yaml:"particleQuality"` // 品质系数（运行时截断到 (0,1]）
	MaxParticles    int     `yaml:"maxParticles"`    // 该档位下的同屏粒子上限
	ParticleCount   int     `yaml:"particleCount"`   // 参考粒子数（调试面板显示用）
}

// EffectsConfig 视觉效果配置
//
// 配置文件位置: data/effects.yaml
type EffectsConfig struct {
	Particles     ParticleConfig                  `yaml:"particles"`
	QualityLevels map[string]QualityLevelSettings `yaml:"qualityLevels"`
	DefaultLevel  string                          `yaml:"defaultLevel"`
}

// 品质档位名称，按从低到高排列
const (
	QualityLow    = "low"
	QualityMedium = "medium"
	QualityHigh   = "high"
	QualityUltra  = "ultra"
)

// QualityLevelOrder 品质档位的升序列表（用于自适应调节）
var QualityLevelOrder = []string{QualityLow, QualityMedium, QualityHigh, QualityUltra}

// DefaultEffectsConfig 返回内置默认配置
func DefaultEffectsConfig() *EffectsConfig {
	return &EffectsConfig{
		Particles: ParticleConfig{
			MaxCount:       500,
			PoolSize:       100,
			Quality:        1.0,
			Enabled:        true,
			BoundaryY:      600,
			MaxTrailLength: 8,
			Bubble:         ParticleTypeConfig{Count: 15, Size: 3, Speed: 100, Life: 800},
			Star:           ParticleTypeConfig{Count: 10, Size: 4, Speed: 80, Life: 1200},
			Explosion:      ParticleTypeConfig{Count: 30, Size: 5, Speed: 150, Life: 1500},
		},
		QualityLevels: map[string]QualityLevelSettings{
			QualityLow:    {ParticleQuality: 0.3, MaxParticles: 100, ParticleCount: 5},
			QualityMedium: {ParticleQuality: 0.6, MaxParticles: 250, ParticleCount: 10},
			QualityHigh:   {ParticleQuality: 1.0, MaxParticles: 500, ParticleCount: 15},
			QualityUltra:  {ParticleQuality: 1.5, MaxParticles: 1000, ParticleCount: 20},
		},
		DefaultLevel: QualityHigh,
	}
}

// ParseEffectsConfig 解析 YAML 配置
//
// 未出现在 YAML 中的字段保留默认值。
func ParseEffectsConfig(data []byte) (*EffectsConfig, error) {
	config := DefaultEffectsConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse effects config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid effects config: %w", err)
	}
	return config, nil
}

// LoadEffectsConfig 从磁盘加载视觉效果配置
//
// 参数:
//   - path: 配置文件路径（如 "data/effects.yaml"）
//
// 返回:
//   - *EffectsConfig: 加载成功后的配置结构
//   - error: 加载失败时返回错误
func LoadEffectsConfig(path string) (*EffectsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read effects config: %w", err)
	}
	return ParseEffectsConfig(data)
}

// LoadEmbeddedEffectsConfig 从嵌入的数据文件系统加载视觉效果配置
func LoadEmbeddedEffectsConfig(path string) (*EffectsConfig, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read effects config: %w", err)
	}
	return ParseEffectsConfig(data)
}

// Validate 验证配置合法性
func (c *EffectsConfig) Validate() error {
	p := c.Particles
	if p.MaxCount <= 0 {
		return fmt.Errorf("particles.maxCount must be positive, got %d", p.MaxCount)
	}
	if p.PoolSize < 0 {
		return fmt.Errorf("particles.poolSize must not be negative, got %d", p.PoolSize)
	}
	if p.Quality <= 0 || math.IsNaN(p.Quality) {
		return fmt.Errorf("particles.quality must be positive, got %v", p.Quality)
	}
	if p.BoundaryY <= 0 {
		return fmt.Errorf("particles.boundaryY must be positive, got %v", p.BoundaryY)
	}
	if p.MaxTrailLength < 0 {
		return fmt.Errorf("particles.maxTrailLength must not be negative, got %d", p.MaxTrailLength)
	}

	for name, t := range map[string]ParticleTypeConfig{
		"bubble":    p.Bubble,
		"star":      p.Star,
		"explosion": p.Explosion,
	} {
		if t.Count < 0 || t.Size < 0 || t.Life <= 0 {
			return fmt.Errorf("particles.%s has invalid values: %+v", name, t)
		}
		// 速度为 0 时粒子不会散开
		if t.Speed <= 0 || math.IsNaN(t.Speed) {
			return fmt.Errorf("particles.%s.speed must be positive, got %v", name, t.Speed)
		}
	}

	for name, level := range c.QualityLevels {
		if level.ParticleQuality <= 0 {
			return fmt.Errorf("qualityLevels.%s.particleQuality must be positive", name)
		}
		if level.MaxParticles <= 0 {
			return fmt.Errorf("qualityLevels.%s.maxParticles must be positive", name)
		}
	}

	if c.DefaultLevel != "" {
		if _, ok := c.QualityLevels[c.DefaultLevel]; !ok {
			return fmt.Errorf("defaultLevel %q is not a configured quality level", c.DefaultLevel)
		}
	}
	return nil
}

// QualityLevel 获取指定档位的设置
func (c *EffectsConfig) QualityLevel(name string) (QualityLevelSettings, bool) {
	level, ok := c.QualityLevels[name]
	return level, ok
}

// LevelNames 返回已配置的档位名称
// 已知档位按 QualityLevelOrder 排序，其余按字母序追加
func (c *EffectsConfig) LevelNames() []string {
	names := make([]string, 0, len(c.QualityLevels))
	known := make(map[string]bool, len(QualityLevelOrder))
	for _, name := range QualityLevelOrder {
		known[name] = true
		if _, ok := c.QualityLevels[name]; ok {
			names = append(names, name)
		}
	}

	var extra []string
	for name := range c.QualityLevels {
		if !known[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// ClampQuality 将品质系数限制在 (0,1] 范围内
// 非法值（NaN、非正数）返回 1.0
func ClampQuality(q float64) float64 {
	if math.IsNaN(q) || q <= 0 {
		return 1.0
	}
	if q > 1 {
		return 1
	}
	return q
}
