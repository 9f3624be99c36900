package locale

// Japanese returns the profile for Japanese screenshots.
func Japanese() *Profile {
	return &Profile{
		ID:      "ja",
		OCRCode: "jpn",
		Name:    "日本語",
		Fields: map[string]string{
			"atk":               "攻撃力",
			"atk_base":          "基礎攻撃力",
			"atk_add":           "加算攻撃力",
			"atk_add_rate":      "加算攻撃力％",
			"cr":                "会心率",
			"cd":                "会心ダメージ",
			"er":                "元素チャージ効率",
			"em":                "元素熟知",
			"em_amplifying":     "増幅系",
			"em_transformative": "転化系",
			"em_absorption":     "吸収量",
		},
		Substitutions: []Substitution{
			{From: "カ", To: "力"},
			{From: "①", To: ""},
			{From: "◆", To: ""},
			{From: "X", To: ""},
			{From: "3行", To: "377"},
		},
		IgnorePatterns: []string{
			"基本ステータス",
			"元素熟知が高いほど、強力な元素の力を発動できる。",
			"蒸発、溶解反応によるダメージ",
			"過負荷、超電導、感電、氷砕き、拡散反応によるダメージ",
			"結晶反応が結晶シールドを生成し、ダメージ吸収量",
			"高級ステータス",
		},
		Messages: Messages{
			FavorAttack:    "会心系を下げてでも攻撃力を上げましょう",
			AttackBalanced: "攻撃力は適正なのでそのまま会心系を上げましょう",
			FavorCrit:      "攻撃力を下げてでも会心系を上げましょう",
			OCRError:       "エラー",
			OCRUnknown:     "エラー：OCRが不明なエラーで失敗しました。",
		},
	}
}

// English returns the profile for English screenshots.
func English() *Profile {
	return &Profile{
		ID:      "en",
		OCRCode: "eng",
		Name:    "English",
		Fields: map[string]string{
			"atk":               "ATK",
			"atk_base":          "ATK Base",
			"atk_add":           "ATK Add",
			"atk_add_rate":      "ATK Add %",
			"cr":                "CRIT Rate",
			"cd":                "CRIT DMG",
			"er":                "Energy Recharge",
			"em":                "Elemental Mastery",
			"em_amplifying":     "Amplifying",
			"em_transformative": "Transformative",
			"em_absorption":     "Absorption",
		},
		Ignore: []string{"in"},
		Messages: Messages{
			FavorAttack:    "favor attack even at the cost of crit",
			AttackBalanced: "attack is well allocated, raise crit",
			FavorCrit:      "favor crit even at the cost of attack",
			OCRError:       "Error",
			OCRUnknown:     "Error: OCR failed with unknown error",
		},
	}
}

// Builtin returns fresh copies of all compiled-in profiles.
func Builtin() []*Profile {
	return []*Profile{Japanese(), English()}
}
