package serviceInfo

import "fmt"

type ServiceInfo string

var (
	SERVICE_NAME        ServiceInfo = "Genetics Results API"
	SERVICE_WELCOME     ServiceInfo = "Welcome to the genetics results API!"
	SERVICE_DESCRIPTION ServiceInfo = "Association, fine-mapping and allele frequency results joined per variant."

	SERVICE_ARTIFACT    ServiceInfo = "genetics-results-api"
	SERVICE_VERSION     ServiceInfo = "0.1.0"
	SERVICE_TYPE_NO_VER ServiceInfo = ServiceInfo(fmt.Sprintf("fi.finngen:%s", SERVICE_ARTIFACT))
	SERVICE_ID          ServiceInfo = SERVICE_TYPE_NO_VER
	SERVICE_TYPE        ServiceInfo = ServiceInfo(fmt.Sprintf("%s:%s", SERVICE_TYPE_NO_VER, SERVICE_VERSION))
)

func (s ServiceInfo) String() string {
	return string(s)
}
