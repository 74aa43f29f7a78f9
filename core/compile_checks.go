package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ Registry         = (*ResolverRegistry)(nil)
	_ TransformService = (*Service)(nil)
	_ SpecValidator    = (*Service)(nil)
	_ MetricsRecorder  = NopMetricsRecorder{}
	_ ConfigProvider   = (*CfgxConfigProvider)(nil)
	_ OptionsResolver  = GoOptionsResolver{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
