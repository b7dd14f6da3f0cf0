// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for the vsh
// binary. It centralizes the raw stderr reporting that happens before
// the structured logger is initialized.
package process
