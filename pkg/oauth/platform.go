package oauth

import (
	"errors"
	"fmt"
	"strings"
)

// Platform identifies a third-party identity provider ("open platform").
type Platform string

const (
	PlatformGitHub     Platform = "github"
	PlatformGitee      Platform = "gitee"
	PlatformOSChina    Platform = "oschina"
	PlatformBaidu      Platform = "baidu"
	PlatformQQ         Platform = "qq"
	PlatformWeChat     Platform = "wechat"
	PlatformWeChatMP   Platform = "wechat_mp"
	PlatformWeChatWork Platform = "wechat_work"
	PlatformDingTalk   Platform = "dingtalk"
	PlatformDouyin     Platform = "douyin"
	PlatformEleme      Platform = "eleme"
	PlatformGoogle     Platform = "google"
)

// Platforms returns every supported platform.
func Platforms() []Platform {
	return []Platform{
		PlatformGitHub, PlatformGitee, PlatformOSChina, PlatformBaidu,
		PlatformQQ, PlatformWeChat, PlatformWeChatMP, PlatformWeChatWork,
		PlatformDingTalk, PlatformDouyin, PlatformEleme, PlatformGoogle,
	}
}

var platformAliases = map[string]Platform{
	"tiktok":      PlatformDouyin,
	"wecom":       PlatformWeChatWork,
	"wechat_open": PlatformWeChat,
	"wechatmp":    PlatformWeChatMP,
	"wechatwork":  PlatformWeChatWork,
}

// ParsePlatform parses a platform name case-insensitively.
// Dashes are treated as underscores and a few common aliases are accepted.
func ParsePlatform(s string) (Platform, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if p, ok := platformAliases[name]; ok {
		return p, nil
	}
	for _, p := range Platforms() {
		if string(p) == name {
			return p, nil
		}
	}
	return "", errors.Join(ErrUnknownPlatform, fmt.Errorf("platform %q", s))
}

func (p Platform) String() string { return string(p) }
