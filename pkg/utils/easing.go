package utils

import "math"

// 缓动函数
//
// 所有函数接受进度 t，超出 [0, 1] 的输入先被截断，返回缓动后的值。
// 演示场景用它们驱动泡泡的出现、摆动和破裂闪光。

// Clamp01 将 t 截断到 [0, 1]，NaN 视为 0
func Clamp01(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// EaseOutCubic 三次方缓出：开始快，结束慢
// f(t) = 1 - (1-t)³
func EaseOutCubic(t float64) float64 {
	t = Clamp01(t)
	return 1 - math.Pow(1-t, 3)
}

// EaseOutBack 带回弹的缓出，中途略微超过 1
// f(t) = 1 + c3(t-1)³ + c1(t-1)²
func EaseOutBack(t float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	t = Clamp01(t)
	u := t - 1
	return 1 + c3*u*u*u + c1*u*u
}

// EaseInQuad 二次方缓入：开始慢，结束快
func EaseInQuad(t float64) float64 {
	t = Clamp01(t)
	return t * t
}

// Lerp 线性插值，t=0 返回 a，t=1 返回 b（t 不截断）
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
