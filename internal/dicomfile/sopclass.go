package dicomfile

// SOP Class UIDs the extractor resolves to names.
// https://dicom.nema.org/medical/dicom/current/output/chtml/part04/sect_B.5.html
const (
	MRImageStorage                        = "1.2.840.10008.5.1.4.1.1.4"
	EnhancedMRImageStorage                = "1.2.840.10008.5.1.4.1.1.4.1"
	MRSpectroscopyStorage                 = "1.2.840.10008.5.1.4.1.1.4.2"
	EnhancedMRColorImageStorage           = "1.2.840.10008.5.1.4.1.1.4.3"
	LegacyConvertedEnhancedMRImageStorage = "1.2.840.10008.5.1.4.1.1.4.4"
	CTImageStorage                        = "1.2.840.10008.5.1.4.1.1.2"
	EnhancedCTImageStorage                = "1.2.840.10008.5.1.4.1.1.2.1"
	PETImageStorage                       = "1.2.840.10008.5.1.4.1.1.128"
	SecondaryCaptureImageStorage          = "1.2.840.10008.5.1.4.1.1.7"
	GrayscaleSoftcopyPresentationState    = "1.2.840.10008.5.1.4.1.1.11.1"
	RawDataStorage                        = "1.2.840.10008.5.1.4.1.1.66"
	BasicTextSRStorage                    = "1.2.840.10008.5.1.4.1.1.88.11"
	EnhancedSRStorage                     = "1.2.840.10008.5.1.4.1.1.88.22"
)

var sopClassNames = map[string]string{
	MRImageStorage:                        "MR Image Storage",
	EnhancedMRImageStorage:                "Enhanced MR Image Storage",
	MRSpectroscopyStorage:                 "MR Spectroscopy Storage",
	EnhancedMRColorImageStorage:           "Enhanced MR Color Image Storage",
	LegacyConvertedEnhancedMRImageStorage: "Legacy Converted Enhanced MR Image Storage",
	CTImageStorage:                        "CT Image Storage",
	EnhancedCTImageStorage:                "Enhanced CT Image Storage",
	PETImageStorage:                       "Positron Emission Tomography Image Storage",
	SecondaryCaptureImageStorage:          "Secondary Capture Image Storage",
	GrayscaleSoftcopyPresentationState:    "Grayscale Softcopy Presentation State Storage",
	RawDataStorage:                        "Raw Data Storage",
	BasicTextSRStorage:                    "Basic Text SR Storage",
	EnhancedSRStorage:                     "Enhanced SR Storage",
}

// SOPClassName returns the human-readable name for a SOP Class UID.
// Unknown UIDs are returned unchanged.
func SOPClassName(uid string) string {
	if name, ok := sopClassNames[uid]; ok {
		return name
	}
	return uid
}
