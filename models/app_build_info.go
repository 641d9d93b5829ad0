// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "strings"

const buildValueUnknown = "N/A"

// AppBuildInfo is the linker-injected identity of a mirror-keeper binary.
// The client logs it on start, the status CLI prints it, and the feed falls
// back to its version on /api/version when the config names none.
type AppBuildInfo struct {
	version string
	date    string
	commit  string
}

// NewAppBuildInfo trims the linker values; blank ones count as unset.
func NewAppBuildInfo(version, date, commit string) AppBuildInfo {
	return AppBuildInfo{
		version: strings.TrimSpace(version),
		date:    strings.TrimSpace(date),
		commit:  strings.TrimSpace(commit),
	}
}

func (a AppBuildInfo) BuildVersion() string {
	return a.version
}

func (a AppBuildInfo) BuildDate() string {
	return a.date
}

func (a AppBuildInfo) BuildCommit() string {
	return a.commit
}

// BuildField is one labelled line of build output.
type BuildField struct {
	Label string
	Value string
}

// Fields returns version, date and commit in display order with unset
// values shown as N/A.
func (a AppBuildInfo) Fields() []BuildField {
	return []BuildField{
		{Label: "Version", Value: orUnknown(a.version)},
		{Label: "Date", Value: orUnknown(a.date)},
		{Label: "Commit", Value: orUnknown(a.commit)},
	}
}

func orUnknown(v string) string {
	if v == "" {
		return buildValueUnknown
	}
	return v
}
