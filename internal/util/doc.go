// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across llmchat.
//
//   - TruncateWidth, PadWidth, StringWidth: display-width aware text fitting
//     for the terminal UI (wide CJK runes count as two cells)
//   - AtomicWriteFile: crash-safe file writing with fsync
package util
