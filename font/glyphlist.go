package font

// glyphNameToUnicode maps Adobe glyph names to their Unicode values. This
// covers the names that appear in /Differences arrays in practice: the
// Latin repertoire of the standard encodings plus common punctuation,
// ligature and symbol names.
var glyphNameToUnicode = map[string]rune{
	// ASCII
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
	"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+',
	"comma": ',', "hyphen": '-', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=',
	"greater": '>', "question": '?', "at": '@',
	"A": 'A', "B": 'B', "C": 'C', "D": 'D', "E": 'E', "F": 'F', "G": 'G',
	"H": 'H', "I": 'I', "J": 'J', "K": 'K', "L": 'L', "M": 'M', "N": 'N',
	"O": 'O', "P": 'P', "Q": 'Q', "R": 'R', "S": 'S', "T": 'T', "U": 'U',
	"V": 'V', "W": 'W', "X": 'X', "Y": 'Y', "Z": 'Z',
	"bracketleft": '[', "backslash": '\\', "bracketright": ']',
	"asciicircum": '^', "underscore": '_', "grave": '`',
	"a": 'a', "b": 'b', "c": 'c', "d": 'd', "e": 'e', "f": 'f', "g": 'g',
	"h": 'h', "i": 'i', "j": 'j', "k": 'k', "l": 'l', "m": 'm', "n": 'n',
	"o": 'o', "p": 'p', "q": 'q', "r": 'r', "s": 's', "t": 't', "u": 'u',
	"v": 'v', "w": 'w', "x": 'x', "y": 'y', "z": 'z',
	"braceleft": '{', "bar": '|', "braceright": '}', "asciitilde": '~',

	// Typographic punctuation
	"quoteleft": '‘', "quoteright": '’',
	"quotedblleft": '“', "quotedblright": '”',
	"quotesinglbase": '‚', "quotedblbase": '„',
	"guillemotleft": '«', "guillemotright": '»',
	"guilsinglleft": '‹', "guilsinglright": '›',
	"endash": '–', "emdash": '—',
	"bullet": '•', "periodcentered": '·', "ellipsis": '…',
	"dagger": '†', "daggerdbl": '‡',
	"perthousand": '‰', "fraction": '⁄', "minus": '−',
	"exclamdown": '¡', "questiondown": '¿',
	"hyphensoft": '­', "nbspace": ' ',

	// Currency and signs
	"cent": '¢', "sterling": '£', "currency": '¤', "yen": '¥',
	"Euro": '€', "florin": 'ƒ',
	"section": '§', "paragraph": '¶',
	"copyright": '©', "registered": '®', "trademark": '™',
	"degree": '°', "plusminus": '±', "multiply": '×', "divide": '÷',
	"logicalnot": '¬', "brokenbar": '¦', "micro": 'µ',
	"onequarter": '¼', "onehalf": '½', "threequarters": '¾',
	"onesuperior": '¹', "twosuperior": '²', "threesuperior": '³',
	"ordfeminine": 'ª', "ordmasculine": 'º',

	// Accents
	"acute": '´', "circumflex": 'ˆ', "tilde": '˜',
	"macron": '¯', "breve": '˘', "dotaccent": '˙',
	"dieresis": '¨', "ring": '˚', "cedilla": '¸',
	"hungarumlaut": '˝', "ogonek": '˛', "caron": 'ˇ',

	// Latin letters with diacritics
	"Agrave": 'À', "Aacute": 'Á', "Acircumflex": 'Â', "Atilde": 'Ã',
	"Adieresis": 'Ä', "Aring": 'Å', "AE": 'Æ', "Ccedilla": 'Ç',
	"Egrave": 'È', "Eacute": 'É', "Ecircumflex": 'Ê', "Edieresis": 'Ë',
	"Igrave": 'Ì', "Iacute": 'Í', "Icircumflex": 'Î', "Idieresis": 'Ï',
	"Eth": 'Ð', "Ntilde": 'Ñ',
	"Ograve": 'Ò', "Oacute": 'Ó', "Ocircumflex": 'Ô', "Otilde": 'Õ',
	"Odieresis": 'Ö', "Oslash": 'Ø',
	"Ugrave": 'Ù', "Uacute": 'Ú', "Ucircumflex": 'Û', "Udieresis": 'Ü',
	"Yacute": 'Ý', "Thorn": 'Þ', "germandbls": 'ß',
	"agrave": 'à', "aacute": 'á', "acircumflex": 'â', "atilde": 'ã',
	"adieresis": 'ä', "aring": 'å', "ae": 'æ', "ccedilla": 'ç',
	"egrave": 'è', "eacute": 'é', "ecircumflex": 'ê', "edieresis": 'ë',
	"igrave": 'ì', "iacute": 'í', "icircumflex": 'î', "idieresis": 'ï',
	"eth": 'ð', "ntilde": 'ñ',
	"ograve": 'ò', "oacute": 'ó', "ocircumflex": 'ô', "otilde": 'õ',
	"odieresis": 'ö', "oslash": 'ø',
	"ugrave": 'ù', "uacute": 'ú', "ucircumflex": 'û', "udieresis": 'ü',
	"yacute": 'ý', "thorn": 'þ', "ydieresis": 'ÿ', "Ydieresis": 'Ÿ',
	"Lslash": 'Ł', "lslash": 'ł',
	"OE": 'Œ', "oe": 'œ',
	"Scaron": 'Š', "scaron": 'š',
	"Zcaron": 'Ž', "zcaron": 'ž',
	"dotlessi": 'ı',

	// Ligatures
	"fi": 'ﬁ', "fl": 'ﬂ', "ff": 'ﬀ',
	"ffi": 'ﬃ', "ffl": 'ﬄ',
}
