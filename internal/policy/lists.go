package policy

// StockVendors are stock-photo agencies whose previews carry watermarks.
// Matched as substrings of the normalized filename, URL and title.
var StockVendors = []string{
	"shutterstock",
	"gettyimages",
	"getty images",
	"istockphoto",
	"istock",
	"alamy",
	"depositphotos",
	"dreamstime",
	"123rf",
	"adobestock",
	"adobe stock",
	"bigstockphoto",
	"stocksy",
	"pond5",
	"masterfile",
	"superstock",
	"agefotostock",
	"canstockphoto",
	"wireimage",
	"watermark",
}

// StockURLPatterns are path fragments used by stock sites for comp and
// preview renditions. Matched against the lowercased raw strings.
var StockURLPatterns = []string{
	"/preview/",
	"/comp/",
	"/watermark/",
	"/stock-photo",
	"/stock-image",
	"/editorial-image",
	"/premium-photo",
}

// StockDomains are hosts whose images are rejected outright.
// Matched as host suffixes of the source URL.
var StockDomains = []string{
	"shutterstock.com",
	"gettyimages.com",
	"istockphoto.com",
	"alamy.com",
	"depositphotos.com",
	"dreamstime.com",
	"123rf.com",
	"stock.adobe.com",
	"bigstockphoto.com",
	"agefotostock.com",
	"photodune.net",
	"zimbio.com",
}

// FanDomains host amateur art and fan edits.
var FanDomains = []string{
	"deviantart.com",
	"artstation.com",
	"pixiv.net",
	"fanpop.com",
	"tumblr.com",
	"wattpad.com",
	"redbubble.com",
	"teepublic.com",
	"fanart.tv",
	"aminoapps.com",
}

// FanKeywords mark amateur or derivative content.
var FanKeywords = []string{
	"fanart",
	"fan art",
	"fanmade",
	"fan made",
	"fan edit",
	"fanedit",
	"fanfic",
	"fan fiction",
	"cosplay",
	"my drawing",
	"my art",
	"speedpaint",
	"commission",
	"deviantart",
	"pixiv",
}

// AnimationKeywords indicate an image depicts the animated character rather
// than the performer. The role's character and franchise are added per batch.
var AnimationKeywords = []string{
	"animated",
	"animation",
	"anime",
	"cartoon",
	"character",
	"screenshot",
	"screencap",
	"still",
	"scene",
	"episode",
	"render",
	"illustration",
	"official art",
	"artwork",
	"concept art",
	"cgi",
	"pixar",
	"disney",
	"dreamworks",
}

// PerformerKeywords indicate a photo of the real person.
var PerformerKeywords = []string{
	"actor",
	"actress",
	"headshot",
	"red carpet",
	"premiere",
	"interview",
	"photoshoot",
	"photocall",
	"portrait",
	"attends",
	"arrives",
	"voice actor",
	"voice actress",
	"behind the scenes",
}

// Lists groups the keyword and domain sets a Filter matches against.
type Lists struct {
	StockVendors      []string `yaml:"stockVendors"`
	StockURLPatterns  []string `yaml:"stockUrlPatterns"`
	StockDomains      []string `yaml:"stockDomains"`
	FanDomains        []string `yaml:"fanDomains"`
	FanKeywords       []string `yaml:"fanKeywords"`
	AnimationKeywords []string `yaml:"animationKeywords"`
	PerformerKeywords []string `yaml:"performerKeywords"`
}

// DefaultLists returns a copy of the built-in lists.
func DefaultLists() Lists {
	return Lists{
		StockVendors:      clone(StockVendors),
		StockURLPatterns:  clone(StockURLPatterns),
		StockDomains:      clone(StockDomains),
		FanDomains:        clone(FanDomains),
		FanKeywords:       clone(FanKeywords),
		AnimationKeywords: clone(AnimationKeywords),
		PerformerKeywords: clone(PerformerKeywords),
	}
}

// Merge returns l with every entry of extra appended.
func (l Lists) Merge(extra Lists) Lists {
	return Lists{
		StockVendors:      append(clone(l.StockVendors), extra.StockVendors...),
		StockURLPatterns:  append(clone(l.StockURLPatterns), extra.StockURLPatterns...),
		StockDomains:      append(clone(l.StockDomains), extra.StockDomains...),
		FanDomains:        append(clone(l.FanDomains), extra.FanDomains...),
		FanKeywords:       append(clone(l.FanKeywords), extra.FanKeywords...),
		AnimationKeywords: append(clone(l.AnimationKeywords), extra.AnimationKeywords...),
		PerformerKeywords: append(clone(l.PerformerKeywords), extra.PerformerKeywords...),
	}
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
