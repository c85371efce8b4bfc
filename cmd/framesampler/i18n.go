// Package main provides localization for the framesampler CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Sample frames from video files and classify them with an ONNX model.": "動画ファイルからフレームをサンプリングし、ONNXモデルで分類します。",

		// Input validation
		"either --video_file or --image is required":       "--video_file または --image のいずれかが必要です",
		"--video_file and --image cannot be used together": "--video_file と --image は同時に指定できません",
		"--image must be a .jpg or .jpeg file: %s":         "--image には .jpg または .jpeg ファイルを指定してください: %s",
		"--model is required":                              "--model は必須です",
		"Error: %s":                                        "エラー: %s",
	})
}
