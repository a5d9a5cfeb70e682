package core

import glog "github.com/goliatone/go-logger/glog"

// Configuration seams.
var (
	_ ConfigProvider  = (*CfgxConfigProvider)(nil)
	_ RawConfigLoader = staticRawConfigLoader{}
	_ OptionsResolver = GoOptionsResolver{}
)

// Delivery and logging seams.
var (
	_ Observer       = ObserverFunc(nil)
	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
