package embedding

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// maxWordpieceChars bounds per-word subword search; longer words map to [UNK].
const maxWordpieceChars = 100

// WordPieceTokenizer tokenizes text against a BERT vocabulary file (one token
// per line, line number = token ID). Lowercasing matches the uncased MiniLM
// checkpoints.
type WordPieceTokenizer struct {
	vocab map[string]int64
	unkID int64
	clsID int64
	sepID int64
}

// NewWordPieceTokenizer loads a vocabulary file. The vocabulary must define
// [CLS], [SEP], and [UNK].
func NewWordPieceTokenizer(vocabPath string) (*WordPieceTokenizer, error) {
	f, err := os.Open(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	defer f.Close()

	vocab := make(map[string]int64)
	scanner := bufio.NewScanner(f)
	var id int64
	for scanner.Scan() {
		token := strings.TrimRight(scanner.Text(), "\r")
		vocab[token] = id
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}

	t := &WordPieceTokenizer{vocab: vocab}
	var ok bool
	if t.clsID, ok = vocab["[CLS]"]; !ok {
		return nil, fmt.Errorf("vocabulary missing [CLS]")
	}
	if t.sepID, ok = vocab["[SEP]"]; !ok {
		return nil, fmt.Errorf("vocabulary missing [SEP]")
	}
	if t.unkID, ok = vocab["[UNK]"]; !ok {
		return nil, fmt.Errorf("vocabulary missing [UNK]")
	}
	return t, nil
}

// Tokenize produces padded BERT inputs: [CLS], subword IDs truncated to fit,
// then [SEP], with attention over the non-padding positions.
func (t *WordPieceTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	ids := []int64{t.clsID}
outer:
	for _, word := range basicTokenize(text) {
		for _, id := range t.wordpiece(word) {
			if len(ids) >= maxTokens-1 {
				break outer
			}
			ids = append(ids, id)
		}
	}
	ids = append(ids, t.sepID)

	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)
	copy(inputIDs, ids)
	for i := range ids {
		attentionMask[i] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// wordpiece splits one word into subword IDs by greedy longest-match. A word
// with any unmatchable remainder becomes a single [UNK].
func (t *WordPieceTokenizer) wordpiece(word string) []int64 {
	runes := []rune(word)
	if len(runes) > maxWordpieceChars {
		return []int64{t.unkID}
	}
	var pieces []int64
	start := 0
	for start < len(runes) {
		end := len(runes)
		matched := int64(-1)
		for end > start {
			sub := string(runes[start:end])
			if start > 0 {
				sub = "##" + sub
			}
			if id, ok := t.vocab[sub]; ok {
				matched = id
				break
			}
			end--
		}
		if matched < 0 {
			return []int64{t.unkID}
		}
		pieces = append(pieces, matched)
		start = end
	}
	return pieces
}

// basicTokenize lowercases and splits on whitespace, with punctuation and
// symbol runes emitted as standalone tokens.
func basicTokenize(text string) []string {
	text = strings.ToLower(text)
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			tokens = append(tokens, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}
