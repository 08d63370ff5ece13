package models

// WordEntry is the reference word practised for a letter.
type WordEntry struct {
	Letter        string `json:"letter" yaml:"letter" example:"B"`
	Phoneme       string `json:"phoneme" yaml:"phoneme" example:"/b/"`
	Word          string `json:"word" yaml:"word" example:"Ball"`
	Pronunciation string `json:"pronunciation" yaml:"pronunciation" example:"/bɔːl/"`
	Glyph         string `json:"glyph" yaml:"glyph" example:"⚽"`
}

// Course is a phoneme-pair drill such as V vs B.
type Course struct {
	ID          string   `json:"id" yaml:"id" example:"v-b"`
	First       string   `json:"first" yaml:"first" example:"V"`
	Second      string   `json:"second" yaml:"second" example:"B"`
	Description string   `json:"description" yaml:"description"`
	Words       []string `json:"words" yaml:"words" example:"V,B"`
}
