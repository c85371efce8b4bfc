package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Run level messages (info)
		"Sampling %s": "%s をサンプリング中",
		"Decoding stream %d (%s %dx%d), budget %d packets, sampling every %d frames": "ストリーム %d (%s %dx%d) をデコード中、上限 %d パケット、%d フレームごとにサンプリング",
		"Run finished (%s): %d packets read, %d frames decoded, %d sampled in %s":    "実行終了 (%s): %d パケット読み込み、%d フレームデコード、%d サンプル、所要 %s",
		"Frame %d: %s (%d): %.4f":  "フレーム %d: %s (%d): %.4f",
		"Frame %d: no predictions": "フレーム %d: 予測なし",
		"  %s (%d): %.4f":          "  %s (%d): %.4f",
		"Model %s loaded: input %s %dx%d, output %s with %d classes": "モデル %s を読み込みました: 入力 %s %dx%d、出力 %s (%d クラス)",
		"Serving metrics on %s":         "%s でメトリクスを公開中",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",
		"Report written to %s":          "レポートを %s に書き出しました",

		// Run summary
		"%s [%s]: %d video packets (%d skipped), %d frames decoded, %d converted, %d conversion failures, terminated by %s": "%s [%s]: 映像パケット %d (スキップ %d)、デコード %d フレーム、変換 %d、変換失敗 %d、終了理由 %s",
		"  frame %d: %s (%d): %.4f": "  フレーム %d: %s (%d): %.4f",
		"  frame %d: %s":            "  フレーム %d: %s",

		// Warnings and errors
		"Model is not ready":                                "モデルの準備ができていません",
		"Failed to load model: %s":                          "モデルの読み込みに失敗しました: %s",
		"Failed to release resources: %s":                   "リソースの解放に失敗しました: %s",
		"Failed to save frame %d: %s":                       "フレーム %d の保存に失敗しました: %s",
		"Failed to start metrics server: %s":                "メトリクスサーバーの起動に失敗しました: %s",
		"Metrics server error: %s":                          "メトリクスサーバーのエラー: %s",
		"Inference failed on frame %d: %s":                  "フレーム %d の推論に失敗しました: %s",
		"Skipping frame %d: %s":                             "フレーム %d をスキップします: %s",
		"Stream %d (%s): no decoder for codec %s":           "ストリーム %d (%s): コーデック %s のデコーダがありません",
		"Model outputs %d scores but %d labels were loaded": "モデルの出力は %d 個ですが、ラベルは %d 個です",

		// Component messages (debug)
		"Container %s: %d streams":                    "コンテナ %s: %d ストリーム",
		"Opened %s: %d streams (%s)":                  "%s を開きました: %d ストリーム (%s)",
		"Selected stream %d: %s %dx%d via %s":         "ストリーム %d を選択: %s %dx%d (%s)",
		"Ignoring additional video stream %d":         "追加の映像ストリーム %d を無視します",
		"Configured %s decoder for stream %d (%dx%d)": "ストリーム %d (%[3]dx%[4]d) に %[1]s デコーダを設定しました",
		"Closed decoder after %d frames":              "%d フレームでデコーダを閉じました",
		"End of stream after %d video packets":        "%d 映像パケットでストリーム終端",
		"Packet budget of %d exhausted":               "パケット上限 %d に達しました",
		"Scaling context ready: %dx%d %s -> %s":       "スケーリングコンテキスト準備完了: %dx%d %s -> %s",
		"Scaler ready: %dx%d %s -> %s":                "スケーラー準備完了: %dx%d %s -> %s",
		"Registered decoder %s for %s":                "%[2]s 用にデコーダ %[1]s を登録しました",
		"Registered decoders: %v":                     "登録済みデコーダ: %v",
		"No decoder for %s":                           "%s のデコーダがありません",
		"Loaded %d labels from %s":                    "%[2]s から %[1]d 個のラベルを読み込みました",
		"Decoded %s: %dx%d":                           "%s をデコードしました: %dx%d",
		"Metrics server listening on %s":              "メトリクスサーバーが %s で待機中",
	})
}
