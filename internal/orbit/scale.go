package orbit

// ToKilometers converts a scene-space distance back to kilometres. Valid for
// distances (not positions) because the scene transform is a uniform linear
// scale with no rotation-dependent distortion: the inverse factor is a
// single global constant.
func ToKilometers(sceneDistance, earthRadiusScene float64) float64 {
	return sceneDistance * (EarthRadiusKm / earthRadiusScene)
}

// ToSceneDistance converts a kilometre distance into scene units. Inverse of
// ToKilometers for the same earthRadiusScene.
func ToSceneDistance(km, earthRadiusScene float64) float64 {
	return km * (earthRadiusScene / EarthRadiusKm)
}
