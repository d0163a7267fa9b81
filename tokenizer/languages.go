package tokenizer

import "strings"

func set(codes string) map[string]bool {
	m := make(map[string]bool)
	for _, c := range strings.FieldsFunc(codes, func(r rune) bool { return r == ',' || r == ' ' }) {
		m[c] = true
	}
	return m
}

// WhisperLanguages are the language codes Whisper models accept.
var WhisperLanguages = set("af,am,ar,as,az,ba,be,bg,bn,bo,br,bs,ca,cs,cy,da,de,el,en,es,et,eu,fa,fi,fo,fr,gl,gu,ha,haw,he,hi,hr,ht,hu,hy,id,is,it,ja,jw,ka,kk,km,kn,ko,la,lb,ln,lo,lt,lv,mg,mi,mk,ml,mn,mr,ms,mt,my,ne,nl,nn,no,oc,pa,pl,ps,pt,ro,ru,sa,sd,si,sk,sl,sn,so,sq,sr,su,sv,sw,ta,te,tg,th,tk,tl,tr,tt,uk,ur,uz,vi,yi,yo,zh")

// MosesLanguages have a rule-based sentence splitter.
var MosesLanguages = set("as bn ca cs de el en es et fi fr ga gu hi hu is it kn lt lv ml mni mr nl or pa pl pt ro ru sk sl sv ta te yue zh")

// LearnedUnsupported are Whisper languages the learned splitter has no
// adapter for; it runs without a language hint for them.
var LearnedUnsupported = set("as ba bo br bs fo haw hr ht jw lb ln lo mi nn oc sa sd sn so su sw tk tl tt")

// IsWhisperLanguage reports whether code is a Whisper language code.
func IsWhisperLanguage(code string) bool {
	return WhisperLanguages[code]
}
