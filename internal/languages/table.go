package languages

// Таблица googletrans. "hebrew" встречается дважды (iw, he), сопоставление по названию даёт he.
var googleLanguages = []Language{
	{Code: "af", Name: "afrikaans"},
	{Code: "sq", Name: "albanian"},
	{Code: "am", Name: "amharic"},
	{Code: "ar", Name: "arabic"},
	{Code: "hy", Name: "armenian"},
	{Code: "az", Name: "azerbaijani"},
	{Code: "eu", Name: "basque"},
	{Code: "be", Name: "belarusian"},
	{Code: "bn", Name: "bengali"},
	{Code: "bs", Name: "bosnian"},
	{Code: "bg", Name: "bulgarian"},
	{Code: "ca", Name: "catalan"},
	{Code: "ceb", Name: "cebuano"},
	{Code: "ny", Name: "chichewa"},
	{Code: "zh-cn", Name: "chinese (simplified)"},
	{Code: "zh-tw", Name: "chinese (traditional)"},
	{Code: "co", Name: "corsican"},
	{Code: "hr", Name: "croatian"},
	{Code: "cs", Name: "czech"},
	{Code: "da", Name: "danish"},
	{Code: "nl", Name: "dutch"},
	{Code: "en", Name: "english"},
	{Code: "eo", Name: "esperanto"},
	{Code: "et", Name: "estonian"},
	{Code: "tl", Name: "filipino"},
	{Code: "fi", Name: "finnish"},
	{Code: "fr", Name: "french"},
	{Code: "fy", Name: "frisian"},
	{Code: "gl", Name: "galician"},
	{Code: "ka", Name: "georgian"},
	{Code: "de", Name: "german"},
	{Code: "el", Name: "greek"},
	{Code: "gu", Name: "gujarati"},
	{Code: "ht", Name: "haitian creole"},
	{Code: "ha", Name: "hausa"},
	{Code: "haw", Name: "hawaiian"},
	{Code: "iw", Name: "hebrew"},
	{Code: "hi", Name: "hindi"},
	{Code: "hmn", Name: "hmong"},
	{Code: "hu", Name: "hungarian"},
	{Code: "is", Name: "icelandic"},
	{Code: "ig", Name: "igbo"},
	{Code: "id", Name: "indonesian"},
	{Code: "ga", Name: "irish"},
	{Code: "it", Name: "italian"},
	{Code: "ja", Name: "japanese"},
	{Code: "jw", Name: "javanese"},
	{Code: "kn", Name: "kannada"},
	{Code: "kk", Name: "kazakh"},
	{Code: "km", Name: "khmer"},
	{Code: "ko", Name: "korean"},
	{Code: "ku", Name: "kurdish (kurmanji)"},
	{Code: "ky", Name: "kyrgyz"},
	{Code: "lo", Name: "lao"},
	{Code: "la", Name: "latin"},
	{Code: "lv", Name: "latvian"},
	{Code: "lt", Name: "lithuanian"},
	{Code: "lb", Name: "luxembourgish"},
	{Code: "mk", Name: "macedonian"},
	{Code: "mg", Name: "malagasy"},
	{Code: "ms", Name: "malay"},
	{Code: "ml", Name: "malayalam"},
	{Code: "mt", Name: "maltese"},
	{Code: "mi", Name: "maori"},
	{Code: "mr", Name: "marathi"},
	{Code: "mn", Name: "mongolian"},
	{Code: "my", Name: "myanmar (burmese)"},
	{Code: "ne", Name: "nepali"},
	{Code: "no", Name: "norwegian"},
	{Code: "or", Name: "odia"},
	{Code: "ps", Name: "pashto"},
	{Code: "fa", Name: "persian"},
	{Code: "pl", Name: "polish"},
	{Code: "pt", Name: "portuguese"},
	{Code: "pa", Name: "punjabi"},
	{Code: "ro", Name: "romanian"},
	{Code: "ru", Name: "russian"},
	{Code: "sm", Name: "samoan"},
	{Code: "gd", Name: "scots gaelic"},
	{Code: "sr", Name: "serbian"},
	{Code: "st", Name: "sesotho"},
	{Code: "sn", Name: "shona"},
	{Code: "sd", Name: "sindhi"},
	{Code: "si", Name: "sinhala"},
	{Code: "sk", Name: "slovak"},
	{Code: "sl", Name: "slovenian"},
	{Code: "so", Name: "somali"},
	{Code: "es", Name: "spanish"},
	{Code: "su", Name: "sundanese"},
	{Code: "sw", Name: "swahili"},
	{Code: "sv", Name: "swedish"},
	{Code: "tg", Name: "tajik"},
	{Code: "ta", Name: "tamil"},
	{Code: "te", Name: "telugu"},
	{Code: "th", Name: "thai"},
	{Code: "tr", Name: "turkish"},
	{Code: "uk", Name: "ukrainian"},
	{Code: "ur", Name: "urdu"},
	{Code: "ug", Name: "uyghur"},
	{Code: "uz", Name: "uzbek"},
	{Code: "vi", Name: "vietnamese"},
	{Code: "cy", Name: "welsh"},
	{Code: "xh", Name: "xhosa"},
	{Code: "yi", Name: "yiddish"},
	{Code: "yo", Name: "yoruba"},
	{Code: "zu", Name: "zulu"},
	{Code: "he", Name: "hebrew"},
}
