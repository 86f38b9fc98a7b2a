// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llama runs GGUF models in-process through go-llama.cpp.
//
// The real backend needs cgo and is compiled only with the 'llama' build
// tag. Default builds get a stub whose Load reports the engine as
// unavailable, which keeps CI and the Ollama backend cgo-free:
//
//	go build -tags llama ./...
package llama
