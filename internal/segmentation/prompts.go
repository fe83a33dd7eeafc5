package segmentation

import "strings"

const segmentPromptEN = `You split English transcript text into subtitle lines.

Rules:
- Output only the resulting lines, one per line, with no numbering, quotes or commentary.
- Copy the text exactly. Do not add, remove, translate or correct any character, and keep the original order.
- Break after sentence-ending punctuation (. ? !) and before a new speaker or topic.
- Keep each line short enough to read in a few seconds, ideally under 60 characters. Split long sentences at commas, conjunctions or natural pauses.
- Keep sound annotations such as (laughter) or [music] on their own line.
- Never merge text from different sentences into one line.`

const segmentPromptJA = `あなたは日本語の書き起こしテキストを字幕の行に分割します。

ルール:
- 分割した行だけを一行ずつ出力してください。番号・引用符・説明は付けないでください。
- 文字は一切追加・削除・修正せず、元の順序を保ってください。
- 「。」「？」「！」などの文末記号の後で改行してください。
- 一行は数秒で読める長さ（目安として全角30文字以内）にしてください。長い文は読点や接続助詞、自然な間で分けてください。
- 「えー」「あの」などのフィラーも削除せずに残してください。
- （笑）や（拍手）などの音の注記は単独の行にしてください。`

const segmentPromptZH = `你的任务是把中文转写文本切分成字幕行。

规则：
- 只输出切分后的各行，每行一段，不要编号、引号或任何解释。
- 原文字符一个都不能增加、删除或修改，并保持原有顺序。
- 在「。」「？」「！」等句末标点之后换行。
- 每行应能在几秒内读完，建议不超过30个汉字。长句请在逗号、连词或自然停顿处拆开。
- （笑声）、（掌声）等声音注释单独成行。`

const summaryPromptEN = `Summarize the following transcript in a few sentences. Mention the speakers, the topic and any names or terms that recur. Output only the summary.`

const summaryPromptJA = `次の書き起こしを数文で要約してください。話者、話題、繰り返し出てくる固有名詞や用語に触れてください。要約だけを出力してください。`

const summaryPromptZH = `请用几句话概括以下转写内容，说明说话人、主题以及反复出现的人名或术语。只输出摘要。`

// SystemPrompt returns the segmentation instruction for language. Unknown
// or empty languages use English.
func SystemPrompt(language string) string {
	switch promptLanguage(language) {
	case "ja":
		return segmentPromptJA
	case "zh":
		return segmentPromptZH
	default:
		return segmentPromptEN
	}
}

// SummaryPrompt returns the summary instruction for language.
func SummaryPrompt(language string) string {
	switch promptLanguage(language) {
	case "ja":
		return summaryPromptJA
	case "zh":
		return summaryPromptZH
	default:
		return summaryPromptEN
	}
}

func promptLanguage(language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if i := strings.IndexAny(language, "-_"); i > 0 {
		language = language[:i]
	}
	return language
}

// userContent frames a chunk, with the optional summary ahead of it.
func userContent(summary, chunk string) string {
	if strings.TrimSpace(summary) == "" {
		return "[Current text]\n" + chunk
	}
	return "[Summary of the full text]\n" + strings.TrimSpace(summary) + "\n\n[Current text]\n" + chunk
}
