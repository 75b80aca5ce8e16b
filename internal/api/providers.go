package api

import (
	"github.com/indra622/world-of-asr/internal/config"
	"github.com/indra622/world-of-asr/internal/recognizer"
)

// ProviderInfo is one entry of GET /transcribe/providers, per spec.md §6:
// "enabled backends + supported models + languages".
type ProviderInfo struct {
	Kind      string   `json:"kind"`
	Enabled   bool     `json:"enabled"`
	Models    []string `json:"models"`
	Languages []string `json:"languages"`
}

var autoPlusCommonLanguages = []string{"auto", "en", "ko", "ja", "zh", "es", "fr", "de"}

// providerCatalog enumerates every recognizer.Kind of spec.md §4.1 with its
// supported model sizes and languages, gated by cfg's feature flags (never
// surprise-enabled, per spec.md §6's "disabled backends must be refused
// explicitly").
func providerCatalog(cfg *config.Config) []ProviderInfo {
	return []ProviderInfo{
		{Kind: string(recognizer.OriginWhisper), Enabled: true, Models: []string{"tiny", "base", "small", "medium", "large-v2", "large-v3"}, Languages: autoPlusCommonLanguages},
		{Kind: string(recognizer.FasterWhisper), Enabled: true, Models: []string{"tiny", "base", "small", "medium", "large-v2", "large-v3"}, Languages: autoPlusCommonLanguages},
		{Kind: string(recognizer.FastConformer), Enabled: cfg.FastConformerCmd != "", Models: []string{"fastconformer-hybrid-large"}, Languages: []string{"auto", "en"}},
		{Kind: string(recognizer.GoogleSTT), Enabled: cfg.EnableGoogle, Models: []string{"latest_long", "latest_short"}, Languages: autoPlusCommonLanguages},
		{Kind: string(recognizer.QwenASR), Enabled: cfg.EnableQwen, Models: []string{"qwen-audio-asr"}, Languages: []string{"auto", "en", "zh"}},
		{Kind: string(recognizer.NemoCTCOffline), Enabled: cfg.EnableNemo, Models: []string{"stt_en_conformer_ctc_large"}, Languages: []string{"en"}},
		{Kind: string(recognizer.NemoRNNTStreaming), Enabled: cfg.EnableNemo, Models: []string{"stt_en_conformer_transducer_large"}, Languages: []string{"en"}},
		{Kind: string(recognizer.TritonCTC), Enabled: cfg.EnableTriton, Models: []string{"triton-ctc-ensemble"}, Languages: []string{"en"}},
		{Kind: string(recognizer.TritonRNNT), Enabled: cfg.EnableTriton, Models: []string{"triton-rnnt-ensemble"}, Languages: []string{"en"}},
		{Kind: string(recognizer.NvidiaRiva), Enabled: cfg.EnableRiva, Models: []string{"riva-asr-en"}, Languages: []string{"en"}},
		{Kind: string(recognizer.HFAutoASR), Enabled: cfg.EnableHFAuto, Models: []string{cfg.HFAutoDefaultModel}, Languages: autoPlusCommonLanguages},
	}
}

// providerEnabledMap is the compact {kind: enabled} view GET /health embeds.
func providerEnabledMap(cfg *config.Config) map[string]bool {
	enabled := make(map[string]bool)
	for _, p := range providerCatalog(cfg) {
		enabled[p.Kind] = p.Enabled
	}
	return enabled
}
