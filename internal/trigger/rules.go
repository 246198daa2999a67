package trigger

// builtinRules returns the ordered built-in rule table.
//
// Rules are evaluated top to bottom and the first match wins, so the
// table encodes priority by position: explicit remember requests first,
// then health, preference, and personal facts. Patterns are bilingual
// (Chinese and English). English patterns keep \b word boundaries so a
// phrase buried inside an unrelated word never matches; Chinese patterns
// anchor on the phrase shape instead since there are no word boundaries
// to lean on.
//
// Every pattern captures the salient fragment. Evaluate discards matches
// whose captured content is shorter than two runes, which filters noise
// like "我喜欢茶" where the extracted fact carries no searchable signal.
func builtinRules() []Rule {
	return []Rule{
		// --- Important: explicit remember requests ---
		{Pattern: `记住[这那]个[：:，,]?\s*(\S.*)`, Category: CategoryImportant},
		{Pattern: `(?:请记住|记下来)[：:]?\s*(\S.*)`, Category: CategoryImportant},
		{Pattern: `(?i)\bremember (?:this|that)\b[:：]?\s*(\S.*)`, Category: CategoryImportant},
		{Pattern: `(?i)\b(?:don'?t forget|make a note(?: of)?)\b[:：]?\s*(\S.*)`, Category: CategoryImportant},

		// --- Health: allergies, conditions, medication ---
		{Pattern: `我(?:对|有)\s*(\S+?)\s*过敏`, Category: CategoryHealth},
		{Pattern: `我(?:有|患有)\s*(\S+?(?:病|症|痛|炎))`, Category: CategoryHealth},
		{Pattern: `我患有\s*(\S+)`, Category: CategoryHealth},
		{Pattern: `我正在服用\s*(\S+)`, Category: CategoryHealth},
		{Pattern: `(?i)\bi(?:'m| am)\s+allergic\s+to\s+(\S.*)`, Category: CategoryHealth},
		{Pattern: `(?i)\bi (?:have|suffer from) (?:a |an )?((?:\w[\w\s-]*? )?(?:allergy|allergies|diabetes|asthma|migraines?|condition|disorder)s?)\b`, Category: CategoryHealth},
		{Pattern: `(?i)\bi(?:'m| am) taking ((?:medication|meds|antibiotics|insulin)\b.*)`, Category: CategoryHealth},

		// --- Preference: likes, dislikes, habits ---
		{Pattern: `我(?:很|非常)?(?:喜欢|偏好|习惯)\s*(\S.*)`, Category: CategoryPreference},
		{Pattern: `我(?:不喜欢|讨厌|受不了)\s*(\S.*)`, Category: CategoryPreference},
		{Pattern: `(?i)\bi (?:really |absolutely )?(?:like|love|prefer|enjoy|hate|dislike)\s+(\S.*)`, Category: CategoryPreference},
		{Pattern: `(?i)\bi(?:'d| would) rather\s+(\S.*)`, Category: CategoryPreference},

		// --- Personal: identity facts ---
		{Pattern: `我的\s*(\S+?)\s*(?:是|叫)\s*(\S.*)`, Category: CategoryPersonal},
		{Pattern: `我\s*(?:名字|姓名|职业|职位)\s*(?:是|叫)\s*(\S.*)`, Category: CategoryPersonal},
		{Pattern: `我在\s*(\S+?)\s*工作`, Category: CategoryPersonal},
		{Pattern: `(?i)\bmy (?:name|job|title|role|profession|birthday|email|phone(?: number)?) is\s+(\S.*)`, Category: CategoryPersonal},
		{Pattern: `(?i)\bi work (?:at|for)\s+(\S.*)`, Category: CategoryPersonal},
		{Pattern: `(?i)\bi(?:'m| am) (?:a|an)\s+(\S.*)`, Category: CategoryPersonal},
		// Broad fallback, kept last so it never shadows a specific rule.
		{Pattern: `我是\s*(\S{2,})`, Category: CategoryPersonal},
	}
}
