// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

// Percentage returns ceil(step*batchSize/total*100) clamped to [0, 100].
// A total of zero means there is nothing to do and reports 100.
func Percentage(step, batchSize, total int) int {
	if total <= 0 {
		return 100
	}
	if step <= 0 || batchSize <= 0 {
		return 0
	}

	done := int64(step) * int64(batchSize) * 100
	pct := (done + int64(total) - 1) / int64(total)
	if pct > 100 {
		return 100
	}
	return int(pct)
}

// offset returns the zero-based row offset of step.
func offset(step, batchSize int) int {
	return (step - 1) * batchSize
}
