// Package assets は実行バイナリに埋め込む資材 (マイグレーション、テンプレート) を提供します。
package assets

import "embed"

// Migrations は golang-migrate 形式のスキーマ定義です。
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Templates は画面表示用の HTML テンプレートです。
//
//go:embed templates/*.html
var Templates embed.FS
