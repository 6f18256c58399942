package nos

// The service owns bucket and key naming rules, only emptiness is checked
// locally.
func isValidBucketName(bucketName *string) bool {
	return bucketName != nil && len(*bucketName) > 0
}

func isValidObjectName(objectName *string) bool {
	return objectName != nil && len(*objectName) > 0
}
