package metis

import (
	"net/url"
	"strings"
)

// User agents sent by the acquisition tiers and the media downloader.
const (
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	WeChatUserAgent  = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148 MicroMessenger/8.0.38(0x18002629) NetType/WIFI Language/zh_CN"
)

// Platform names.
const (
	PlatformWeChat      = "wechat"
	PlatformXiaohongshu = "xiaohongshu"
	PlatformZhihu       = "zhihu"
	PlatformDouyin      = "douyin"
	PlatformBilibili    = "bilibili"
	PlatformTaobao      = "taobao"
	PlatformJD          = "jd"
	PlatformWeibo       = "weibo"
	PlatformToutiao     = "toutiao"
	PlatformTwitter     = "twitter"
	PlatformUnknown     = "unknown"
)

// Platform is the policy profile of a content host.
type Platform struct {
	Name          string
	RequiresLogin bool
	// Referer is sent with requests for the platform's media, if set.
	Referer string
}

// PrefersBrowser reports whether the platform's articles are only reliably
// readable through the headless browser tier.
func (p Platform) PrefersBrowser() bool {
	return p.Name == PlatformWeChat
}

// UserAgent returns the user agent to present to the platform. WeChat only
// serves article bodies to its in-app mobile browser; everything else gets
// fallback.
func (p Platform) UserAgent(fallback string) string {
	if p.Name == PlatformWeChat {
		return WeChatUserAgent
	}
	if fallback == "" {
		return DefaultUserAgent
	}
	return fallback
}

type platformProfile struct {
	platform Platform
	domains  []string
}

// Order matters: the first matching profile wins.
var platformProfiles = []platformProfile{
	{Platform{Name: PlatformWeChat, Referer: "https://mp.weixin.qq.com/"}, []string{"mp.weixin.qq.com", "weixin.qq.com", "qpic.cn"}},
	{Platform{Name: PlatformXiaohongshu, Referer: "https://www.xiaohongshu.com/"}, []string{"xiaohongshu.com", "xhslink.com", "xhscdn.com"}},
	{Platform{Name: PlatformZhihu, Referer: "https://www.zhihu.com/"}, []string{"zhihu.com", "zhimg.com"}},
	{Platform{Name: PlatformDouyin, Referer: "https://www.douyin.com/"}, []string{"douyin.com"}},
	{Platform{Name: PlatformBilibili, Referer: "https://www.bilibili.com/"}, []string{"bilibili.com", "b23.tv"}},
	{Platform{Name: PlatformTaobao, RequiresLogin: true, Referer: "https://www.taobao.com/"}, []string{"taobao.com"}},
	{Platform{Name: PlatformJD, RequiresLogin: true, Referer: "https://www.jd.com/"}, []string{"jd.com", "jd.hk"}},
	{Platform{Name: PlatformWeibo, Referer: "https://weibo.com/"}, []string{"weibo.com", "weibo.cn"}},
	{Platform{Name: PlatformToutiao, Referer: "https://www.toutiao.com/"}, []string{"toutiao.com"}},
	{Platform{Name: PlatformTwitter, Referer: "https://twitter.com/"}, []string{"twitter.com", "x.com"}},
}

// DetectPlatform classifies a URL by its host. Unmatched or unparseable URLs
// yield the unknown platform.
func DetectPlatform(rawURL string) Platform {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Platform{Name: PlatformUnknown}
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return Platform{Name: PlatformUnknown}
	}
	for _, p := range platformProfiles {
		for _, d := range p.domains {
			if host == d || strings.HasSuffix(host, "."+d) {
				return p.platform
			}
		}
	}
	return Platform{Name: PlatformUnknown}
}
