// Красота: подписи карточек на двух языках.

package ui

import "github.com/ilkoid/gomi-ai/pkg/gomi"

// text — подпись на английском и японском.
type text struct {
	en string
	ja string
}

var (
	txtDescription = text{"Description", "説明"}
	txtCollection  = text{"Collection Schedule", "収集日"}
	txtSteps       = text{"Preparation Steps", "準備方法"}
	txtExamples    = text{"Examples", "例"}
	txtNotes       = text{"Important Notes", "注意事項"}
	txtOthers      = text{"Other candidates", "その他の候補"}
	txtConfirm     = text{"Low confidence. Please verify the classification.", "確信度が低いため、確認してください。"}
	txtConfidence  = text{"Confidence", "確信度"}
	txtWelcome     = text{
		"Type a photo path (or s3://key) and press Enter.",
		"写真のパス（または s3://key）を入力して Enter を押してください。",
	}
	txtClassifyHint = text{"Enter: classify · Esc: discard", "Enter: 分類 · Esc: 取り消し"}
	txtClassifying  = text{"Classifying…", "分類中…"}
	txtRetryHint    = text{"Ctrl+R: retry · Ctrl+N: new photo", "Ctrl+R: 再試行 · Ctrl+N: 新しい写真"}
	txtNextHint     = text{"Ctrl+N or a new path: next photo", "Ctrl+N または新しいパス: 次の写真"}
)

// in возвращает подпись для языка; both показывает обе.
func (t text) in(lang gomi.Language) string {
	switch lang {
	case gomi.LangEnglish:
		return t.en
	case gomi.LangBoth:
		return t.ja + " / " + t.en
	default:
		return t.ja
	}
}
