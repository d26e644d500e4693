// Package provider implements remote translators for the engine and client.
package provider

import "github.com/ZaguanLabs/gotmemo"

// RemoteTranslator is an alias to the main package interface.
type RemoteTranslator = gotmemo.RemoteTranslator

// TranslateRequest is an alias to the main package type.
type TranslateRequest = gotmemo.TranslateRequest

// Name identifies a provider in configuration.
type Name string

const (
	NameGoogle Name = "google"
	NameOpenAI Name = "openai"
	NameMock   Name = "mock"
)

// Names lists the supported provider names.
func Names() []Name {
	return []Name{NameGoogle, NameOpenAI, NameMock}
}
