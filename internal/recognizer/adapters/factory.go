package adapters

import (
	"github.com/indra622/world-of-asr/internal/config"
	"github.com/indra622/world-of-asr/internal/recognizer"
)

// Factories builds the Kind -> Factory table for the registry, one entry
// per variant enumerated in spec.md §4.1, each gated by cfg's feature flags.
func Factories(cfg *config.Config) map[recognizer.Kind]recognizer.Factory {
	return map[recognizer.Kind]recognizer.Factory{
		recognizer.OriginWhisper:     NewOriginWhisperAdapter,
		recognizer.FasterWhisper:     NewFasterWhisperAdapter,
		recognizer.FastConformer:     NewFastConformerFactory(cfg.FastConformerCmd),
		recognizer.GoogleSTT:         NewGoogleSTTFactory(cfg.EnableGoogle, cfg.GoogleProjectID),
		recognizer.QwenASR:          NewQwenASRFactory(cfg.EnableQwen, cfg.QwenAPIKey, cfg.QwenEndpoint),
		recognizer.NemoCTCOffline:    NewNemoCTCOfflineFactory(cfg.EnableNemo),
		recognizer.NemoRNNTStreaming: NewNemoRNNTStreamingFactory(cfg.EnableNemo),
		recognizer.TritonCTC:         NewTritonCTCFactory(cfg.EnableTriton, cfg.TritonURL),
		recognizer.TritonRNNT:        NewTritonRNNTFactory(cfg.EnableTriton, cfg.TritonURL),
		recognizer.NvidiaRiva:        NewNvidiaRivaFactory(cfg.EnableRiva, cfg.RivaURL),
		recognizer.HFAutoASR:         NewHFAutoASRAdapter(cfg.EnableHFAuto, cfg.HFAutoDefaultModel),
	}
}
